// Package progress translates the human-readable progress lines emitted by
// external engines into normalized (fraction, ETA) updates, including a
// tracker that folds multi-pass engine runs into one monotonic fraction.
package progress
