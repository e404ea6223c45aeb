// Package ytdlp acquires audio from remote sources by driving yt-dlp as a
// subprocess: a metadata probe before download, then an audio extraction run
// whose progress lines feed the job's download phase.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/WillCMcC/splitripper/internal/config"
	"github.com/WillCMcC/splitripper/internal/logging"
	"github.com/WillCMcC/splitripper/internal/progress"
	"github.com/WillCMcC/splitripper/internal/services"
)

// Download formats checked when locating the produced file, in order of
// preference after the configured target format.
var audioExtensions = []string{"mp3", "m4a", "webm", "wav", "opus"}

// Metadata is the probe result for a remote source.
type Metadata struct {
	Title       string
	DurationSec int
	Channel     string
}

// ProgressFunc receives download progress. The ETA pointer is nil when the
// tool's output carried no estimate.
type ProgressFunc func(fraction float64, etaSec *int)

// Acquirer is the behaviour the worker needs from the acquisition engine.
type Acquirer interface {
	Probe(ctx context.Context, url string) (Metadata, error)
	Download(ctx context.Context, url, destDir string, onProgress ProgressFunc) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
	Capture(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary       string
	audioFormat  string
	audioQuality string
	exec         Executor
	logger       *slog.Logger
}

// New constructs an acquisition client from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &Client{
		binary:       cfg.Acquisition.Binary,
		audioFormat:  cfg.Acquisition.AudioFormat,
		audioQuality: cfg.Acquisition.AudioQuality,
		exec:         commandExecutor{},
		logger:       logger.With(logging.String(logging.FieldComponent, "ytdlp")),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type probePayload struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Channel  string  `json:"channel"`
	Uploader string  `json:"uploader"`
}

// Probe fetches title, duration, and channel for a remote source without
// downloading it.
func (c *Client) Probe(ctx context.Context, url string) (Metadata, error) {
	out, err := c.exec.Capture(ctx, c.binary, []string{"--dump-json", "--no-playlist", url})
	if err != nil {
		if ctx.Err() != nil {
			return Metadata{}, services.Wrap(services.ErrCancelled, "downloading", "probe source", "Cancelled by user", ctx.Err())
		}
		return Metadata{}, services.Wrap(services.ErrExternalTool, "downloading", "probe source", "Failed to probe source metadata", err)
	}
	var payload probePayload
	if err := json.Unmarshal(bytes.TrimSpace(out), &payload); err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "downloading", "parse probe output", "Unreadable probe output", err)
	}
	channel := payload.Channel
	if channel == "" {
		channel = payload.Uploader
	}
	return Metadata{
		Title:       strings.TrimSpace(payload.Title),
		DurationSec: int(payload.Duration),
		Channel:     strings.TrimSpace(channel),
	}, nil
}

var (
	downloadPercent = regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`)
	downloadETA     = regexp.MustCompile(`ETA\s+([0-9:]+)`)
)

// parseDownloadLine extracts (fraction, eta) from a yt-dlp progress line.
func parseDownloadLine(line string) (float64, *int, bool) {
	m := downloadPercent.FindStringSubmatch(line)
	if m == nil {
		return 0, nil, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, nil, false
	}
	fraction := pct / 100
	if fraction > 0.999 {
		fraction = 0.999
	}
	var eta *int
	if em := downloadETA.FindStringSubmatch(line); em != nil {
		if secs, ok := progress.ParseClock(em[1]); ok {
			eta = &secs
		}
	}
	return fraction, eta, true
}

// Download fetches the source's audio into destDir and returns the local
// file path. Progress updates are throttled only by the tool itself; the
// caller's store applies the monotonic gate.
func (c *Client) Download(ctx context.Context, url, destDir string, onProgress ProgressFunc) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrStaging, "downloading", "prepare download dir", "Failed to create download directory", err)
	}

	args := []string{
		"-x",
		"--audio-format", c.audioFormat,
		"--audio-quality", c.audioQuality,
		"--no-playlist",
		"--newline",
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
		url,
	}
	c.logger.Info("starting download", logging.String("url", url))

	runErr := c.exec.Run(ctx, c.binary, args, func(line string) {
		if onProgress == nil {
			return
		}
		if fraction, eta, ok := parseDownloadLine(line); ok {
			onProgress(fraction, eta)
		}
	})
	if runErr != nil {
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrCancelled, "downloading", "download source", "Cancelled by user", ctx.Err())
		}
		return "", services.Wrap(services.ErrExternalTool, "downloading", "download source", services.Truncate(runErr.Error(), services.MaxErrorMessageLen), runErr)
	}

	path, err := c.locateAudioFile(destDir)
	if err != nil {
		return "", err
	}
	if onProgress != nil {
		zero := 0
		onProgress(1, &zero)
	}
	return path, nil
}

// locateAudioFile finds the downloaded audio file, preferring the configured
// target format.
func (c *Client) locateAudioFile(destDir string) (string, error) {
	exts := make([]string, 0, len(audioExtensions)+1)
	if c.audioFormat != "" {
		exts = append(exts, c.audioFormat)
	}
	for _, ext := range audioExtensions {
		if ext != c.audioFormat {
			exts = append(exts, ext)
		}
	}
	for _, ext := range exts {
		matches, err := filepath.Glob(filepath.Join(destDir, "*."+ext))
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "downloading", "locate audio file", "No audio file found after download", nil)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("start command: %w", err)
	}
	pw.Close()

	scanner := bufio.NewScanner(pr)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}
	scanErr := scanner.Err()
	pr.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	if scanErr != nil {
		return fmt.Errorf("scan output: %w", scanErr)
	}
	return nil
}

func (commandExecutor) Capture(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, errors.New(services.Truncate(detail, services.MaxErrorMessageLen))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
