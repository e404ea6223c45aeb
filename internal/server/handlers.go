package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/WillCMcC/splitripper/internal/logging"
	"github.com/WillCMcC/splitripper/internal/metadata"
	"github.com/WillCMcC/splitripper/internal/queue"
)

// localAudioExtensions lists the file extensions accepted for locally queued
// audio, lowercase and without the leading dot.
var localAudioExtensions = map[string]struct{}{
	"mp3":  {},
	"wav":  {},
	"flac": {},
	"aac":  {},
	"m4a":  {},
	"ogg":  {},
	"wma":  {},
	"opus": {},
}

type addQueueRequest struct {
	URLs     []string `json:"urls"`
	Folder   string   `json:"folder"`
	StemMode string   `json:"stem_mode"`
}

type addQueueLocalRequest struct {
	Paths    []string `json:"paths"`
	Folder   string   `json:"folder"`
	StemMode string   `json:"stem_mode"`
}

type rejectedPath struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type queueListResponse struct {
	Running bool             `json:"running"`
	Items   []queue.Snapshot `json:"items"`
}

type concurrencyResponse struct {
	Active int `json:"active"`
	Max    int `json:"max"`
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.cfg)
}

func (s *apiServer) handleQueueList(w http.ResponseWriter, r *http.Request) {
	store := s.daemon.store
	s.writeJSON(w, http.StatusOK, queueListResponse{
		Running: store.Running(),
		Items:   store.List(),
	})
}

func (s *apiServer) handleQueueAdd(w http.ResponseWriter, r *http.Request) {
	var req addQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = s.daemon.cfg.Paths.DefaultFolder
	}

	added := make([]queue.Snapshot, 0, len(req.URLs))
	for _, url := range req.URLs {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		added = append(added, s.daemon.store.EnqueueRemote(url, folder, req.StemMode))
	}
	if len(added) == 0 {
		s.writeError(w, http.StatusBadRequest, "no urls provided")
		return
	}
	s.log().Info("queued remote sources", logging.Int("count", len(added)))
	s.writeJSON(w, http.StatusOK, map[string]any{"added": added})
}

func (s *apiServer) handleQueueAddLocal(w http.ResponseWriter, r *http.Request) {
	var req addQueueLocalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = s.daemon.cfg.Paths.DefaultFolder
	}

	added := make([]queue.Snapshot, 0, len(req.Paths))
	rejected := make([]rejectedPath, 0)
	for _, path := range req.Paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if reason := validateLocalPath(path); reason != "" {
			s.log().Warn("rejected local file",
				logging.String("path", path),
				logging.String("reason", reason))
			rejected = append(rejected, rejectedPath{Path: path, Error: reason})
			continue
		}
		title := metadata.DeriveTitle(path)
		added = append(added, s.daemon.store.EnqueueLocal(path, title, folder, req.StemMode))
	}
	if len(added) == 0 && len(rejected) == 0 {
		s.writeError(w, http.StatusBadRequest, "no paths provided")
		return
	}
	s.log().Info("queued local files",
		logging.Int("added", len(added)),
		logging.Int("rejected", len(rejected)))
	s.writeJSON(w, http.StatusOK, map[string]any{"added": added, "rejected": rejected})
}

// validateLocalPath screens a caller-supplied file path before it is queued.
// Returns "" when the path is acceptable, otherwise a rejection reason.
func validateLocalPath(path string) string {
	if strings.Contains(path, "..") {
		return "path traversal not allowed"
	}
	if !filepath.IsAbs(path) {
		return "path must be absolute"
	}
	info, err := os.Stat(path)
	if err != nil {
		return "file does not exist"
	}
	if !info.Mode().IsRegular() {
		return "path is not a regular file"
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if _, ok := localAudioExtensions[ext]; !ok {
		return fmt.Sprintf("invalid audio extension: %s", ext)
	}
	return ""
}

func (s *apiServer) handleQueueStart(w http.ResponseWriter, r *http.Request) {
	if started := s.daemon.StartQueue(); !started {
		s.writeJSON(w, http.StatusOK, map[string]any{"started": false, "message": "already running"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"started": true})
}

func (s *apiServer) handleQueueStop(w http.ResponseWriter, r *http.Request) {
	s.daemon.StopQueue()
	s.writeJSON(w, http.StatusOK, map[string]any{"stopping": true})
}

func (s *apiServer) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	// While processing, only non-running jobs are dropped.
	keepRunning := s.daemon.store.Running()
	removed := s.daemon.store.Clear(keepRunning)
	s.writeJSON(w, http.StatusOK, map[string]any{"cleared": true, "removed": removed})
}

func (s *apiServer) handleQueueCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.daemon.store.Get(id); !ok {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if s.daemon.store.CancelQueued(id) {
		s.writeJSON(w, http.StatusOK, map[string]any{"canceled": true})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"canceled": false,
		"message":  "only queued items can be canceled",
	})
}

func (s *apiServer) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.store.Progress())
}

func (s *apiServer) handleOperationProgress(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")
	progress, ok := s.daemon.store.OperationProgressFor(requestID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown request id")
		return
	}
	s.writeJSON(w, http.StatusOK, progress)
}

func (s *apiServer) handleGetConcurrency(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, concurrencyResponse{
		Active: s.daemon.store.ActiveCount(),
		Max:    s.daemon.store.MaxConcurrency(),
	})
}

func (s *apiServer) handleSetConcurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Max int `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Max < 1 {
		s.writeError(w, http.StatusBadRequest, "max must be at least 1")
		return
	}
	applied := s.daemon.store.SetMaxConcurrency(req.Max)
	s.log().Info("concurrency updated", logging.Int("max", applied))
	s.writeJSON(w, http.StatusOK, concurrencyResponse{
		Active: s.daemon.store.ActiveCount(),
		Max:    applied,
	})
}
