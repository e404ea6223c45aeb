// Package demucs drives the stem-separation engine as a subprocess: it
// builds the invocation for the configured model, stem mode, and quality
// preset, pumps the engine's combined output through the progress parser,
// honors the global stop signal, and discovers the produced stem files.
package demucs
