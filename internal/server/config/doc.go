// Package config provides the fxgallery-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (addresses, TLS files, cipher, storage paths)
//   - sanitize.go: Log sanitization (hide secrets)
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// .env files and FXGALLERY_ environment variables.
package config
