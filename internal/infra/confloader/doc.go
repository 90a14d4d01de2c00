// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. YAML configuration file
//  3. .env files (only for variables not already set in the process)
//  4. Environment variables with the FXGALLERY_ prefix
//  5. Explicit overrides passed to LoadMap (command-line flags)
//
// Environment variable names map to keys by stripping the prefix,
// lower-casing, and turning "__" into a nesting level; a single "_" is part
// of the key name. FXGALLERY_CODEC__EXPORT_PASSPHRASE sets
// codec.export_passphrase.
//
// Watcher reports changes to watched configuration files so a running
// server can apply reloadable settings.
package confloader
