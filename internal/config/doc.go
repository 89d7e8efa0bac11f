// Package config provides configuration structures and utilities for
// tpaudit. It defines the audit and delivery options (template spreadsheet,
// destination range, OAuth file paths, browser settings) and loads optional
// overrides from a YAML configuration file.
package config
