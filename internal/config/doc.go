// Package config defines the ironrise settings shared by the daemon and the
// client commands and provides helpers to load, validate and save them in
// YAML format.
//
// Validate fills in defaults for every optional field, so a loaded Config is
// always ready to use.
package config
