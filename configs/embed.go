// Package configs embeds the configuration template written by
// `joinindex config init`.
//
// The same template serves the user config (~/.config/joinindex/config.yaml)
// and, with --project, a .joinindex.yaml in the current directory. Every key
// is optional; absent keys keep the value of the layer below (see
// internal/config Load).
package configs

import _ "embed"

// ConfigTemplate is the commented example configuration.
//
//go:embed config.example.yaml
var ConfigTemplate string
