// Package queue holds the in-memory job queue shared by the scheduler and
// the HTTP API. All state lives behind a single Store mutex; readers get
// snapshots, never aliases of live records.
package queue
