// Package file provides TOML-based application configuration.
//
// Configuration lives in komenta.toml under the config directory and is
// hot-reloaded via fsnotify when the file changes on disk. Secrets may
// be supplied through environment variables instead of the file.
package file
