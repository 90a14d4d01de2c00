// Package config holds fxtoken CLI settings.
//
// Settings come from ~/.fxgallery/cli.yaml and FXTOKEN_* environment
// variables. Command-line flags take precedence over both.
package config
