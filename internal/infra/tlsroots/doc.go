// Package tlsroots loads trust anchors and serving certificates.
//
//   - roots.go: CA pool for the CLI when the server uses a private CA
//   - reloader.go: serving certificate for the dev server, reloaded via
//     fsnotify when the PEM files are rewritten
package tlsroots
