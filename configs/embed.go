// Package configs provides the embedded configuration template for
// docsearch.
//
// The template is embedded at build time with //go:embed so it is
// available in every distribution. It is written out by
// cmd/docsearch/cmd/config.go when the user runs 'docsearch config init'.
package configs

import _ "embed"

// ExampleConfig is the annotated default configuration file.
//
//go:embed config.example.yaml
var ExampleConfig []byte
