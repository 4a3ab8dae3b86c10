// Package config loads abacus configuration from CUE.
//
// The embedded schema (schema.cue) supplies every default, so an empty
// configuration is valid. A user configuration is either a single .cue file
// or a directory whose .cue files share one package clause:
//
//	limits: fraction_digits: 4
//	keymap: "enter": "="
//
// Validation errors are reported as *ConfigError with the CUE source
// position of the offending value.
package config
