// Package server hosts the splitripper daemon: single-instance lock
// management and the HTTP API that the CLI and other clients use to queue
// work, drive the scheduler, and observe progress.
package server
