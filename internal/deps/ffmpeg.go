package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpeg reports the ffmpeg binary the acquisition tool will execute.
//
// yt-dlp prefers an ffmpeg that sits next to its own executable (or one
// named via --ffmpeg-location) and falls back to resolving "ffmpeg" from
// PATH. This helper mirrors that lookup so status output matches what the
// tool actually runs.
func CheckFFmpeg(acquisitionCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used for audio extraction and format conversion",
	}

	acquisitionBinary := strings.TrimSpace(acquisitionCommand)
	if acquisitionBinary != "" {
		if resolved, err := exec.LookPath(acquisitionBinary); err == nil {
			if candidate, ok := sidecarCandidate(resolved); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func sidecarCandidate(toolPath string) (string, bool) {
	if toolPath == "" {
		return "", false
	}
	dir := filepath.Dir(toolPath)
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
