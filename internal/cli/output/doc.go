// Package output renders command results for the fxtoken CLI.
//
//   - formatter.go: Formatter interface and format selection
//   - table.go: aligned tables, FIELD/VALUE views for single results
//   - json.go: indented JSON
//   - yaml.go: block-style YAML
//
// Parameter objects keep their key order in every format.
package output
