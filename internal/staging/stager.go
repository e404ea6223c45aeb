// Package staging finalizes completed separations: it derives the artist and
// song names for a job, lays out per-stem destination folders, and moves the
// produced stem files into place.
package staging

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/WillCMcC/splitripper/internal/config"
	"github.com/WillCMcC/splitripper/internal/fileutil"
	"github.com/WillCMcC/splitripper/internal/logging"
	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/services"
)

// Stager moves separated stems into the output library.
type Stager struct {
	outputRoot string
	logger     *slog.Logger
}

// New returns a stager rooted at the configured output directory.
func New(cfg *config.Config, logger *slog.Logger) *Stager {
	root := ""
	if cfg != nil {
		root = cfg.Paths.OutputDir
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stager{outputRoot: root, logger: logger.With(logging.String(logging.FieldComponent, "staging"))}
}

// Stage places each stem under <root>/<artist>/<stem-dir>/<song><ext> and
// returns the resolved destination folder. The job's folder override, when
// set, replaces the configured output root. Stems is the name→path mapping
// produced by separation.
func (s *Stager) Stage(job queue.Snapshot, stems map[string]string) (string, error) {
	if len(stems) == 0 {
		return "", services.Wrap(services.ErrStaging, "staging", "stage stems", "No stems to stage", nil)
	}

	root := job.Folder
	if root == "" {
		root = s.outputRoot
	}
	if root == "" {
		return "", services.Wrap(services.ErrConfiguration, "staging", "resolve output root", "No output directory configured", nil)
	}

	artist, song := s.resolveNames(job)
	destDir := root
	if artist != "" {
		destDir = filepath.Join(root, artist)
	}

	// Deterministic move order keeps logs and partial failures readable.
	names := make([]string, 0, len(stems))
	for name := range stems {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src := stems[name]
		stemDir := filepath.Join(destDir, stemDirName(job.StemMode, name))
		if err := os.MkdirAll(stemDir, 0o755); err != nil {
			return "", services.Wrap(services.ErrStaging, "staging", "ensure stem dir", "Failed to create stem directory", err)
		}
		target := filepath.Join(stemDir, song+filepath.Ext(src))
		if err := s.moveFile(src, target); err != nil {
			return "", services.Wrap(services.ErrStaging, "staging", "move stem", "Failed to move stem into place", err)
		}
		s.logger.Info("staged stem",
			logging.String(logging.FieldJobID, job.ID),
			logging.String("stem", name),
			logging.String("target", target))
	}
	return destDir, nil
}

func (s *Stager) resolveNames(job queue.Snapshot) (string, string) {
	if job.Kind == queue.SourceLocal && job.HasArtistTag && job.Channel != "" {
		title := job.Title
		if title == "" {
			title = "untitled"
		}
		return SanitizeFilename(job.Channel), SanitizeFilename(title)
	}
	return ParseArtistSong(job.Title, job.Channel)
}

// stemDirName maps a stem file name to its destination folder. Two-stem mode
// collapses everything that is not vocals into "instrumental".
func stemDirName(stemMode, stemName string) string {
	if stemMode == config.StemMode2 {
		if stemName == "vocals" {
			return "vocals"
		}
		return "instrumental"
	}
	return stemName
}

// moveFile renames src to dst, falling back to a verified copy plus source
// delete when the rename crosses filesystems.
func (s *Stager) moveFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			return err
		}
		if err := os.Remove(src); err != nil {
			s.logger.Warn("failed to remove source stem after copy", logging.Error(err))
		}
		return nil
	}
	return renameErr
}
