package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/server"
)

// apiClient is a thin HTTP client for the daemon API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(address string) *apiClient {
	base := strings.TrimSpace(address)
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type queueListing struct {
	Running bool             `json:"running"`
	Items   []queue.Snapshot `json:"items"`
}

type addResult struct {
	Added    []queue.Snapshot `json:"added"`
	Rejected []rejectedEntry  `json:"rejected"`
}

type rejectedEntry struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type startResult struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

type cancelResult struct {
	Canceled bool   `json:"canceled"`
	Message  string `json:"message"`
}

type clearResult struct {
	Cleared bool `json:"cleared"`
	Removed int  `json:"removed"`
}

type concurrencyInfo struct {
	Active int `json:"active"`
	Max    int `json:"max"`
}

func (c *apiClient) Status() (server.Status, error) {
	var out server.Status
	err := c.get("/api/status", &out)
	return out, err
}

func (c *apiClient) Queue() (queueListing, error) {
	var out queueListing
	err := c.get("/api/queue", &out)
	return out, err
}

func (c *apiClient) AddURLs(urls []string, folder, stemMode string) (addResult, error) {
	var out addResult
	err := c.post("/api/queue", map[string]any{
		"urls":      urls,
		"folder":    folder,
		"stem_mode": stemMode,
	}, &out)
	return out, err
}

func (c *apiClient) AddFiles(paths []string, folder, stemMode string) (addResult, error) {
	var out addResult
	err := c.post("/api/queue/local", map[string]any{
		"paths":     paths,
		"folder":    folder,
		"stem_mode": stemMode,
	}, &out)
	return out, err
}

func (c *apiClient) StartQueue() (startResult, error) {
	var out startResult
	err := c.post("/api/queue/start", nil, &out)
	return out, err
}

func (c *apiClient) StopQueue() error {
	return c.post("/api/queue/stop", nil, nil)
}

func (c *apiClient) ClearQueue() (clearResult, error) {
	var out clearResult
	err := c.post("/api/queue/clear", nil, &out)
	return out, err
}

func (c *apiClient) Cancel(id string) (cancelResult, error) {
	var out cancelResult
	err := c.post("/api/queue/cancel/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *apiClient) Progress() (queue.GlobalProgress, error) {
	var out queue.GlobalProgress
	err := c.get("/api/progress", &out)
	return out, err
}

func (c *apiClient) Concurrency() (concurrencyInfo, error) {
	var out concurrencyInfo
	err := c.get("/api/concurrency", &out)
	return out, err
}

func (c *apiClient) SetConcurrency(max int) (concurrencyInfo, error) {
	var out concurrencyInfo
	err := c.post("/api/concurrency", map[string]any{"max": max}, &out)
	return out, err
}

func (c *apiClient) get(path string, out any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return wrapDialError(err, c.base)
	}
	return decodeResponse(resp, out)
}

func (c *apiClient) post(path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	resp, err := c.http.Post(c.base+path, "application/json", body)
	if err != nil {
		return wrapDialError(err, c.base)
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDialError(err error, base string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; is splitripperd running?", base)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}
