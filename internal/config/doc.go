// Package config loads gatherer configuration from YAML.
//
// Files may reference environment variables as ${VAR}; they are expanded
// before parsing. LoadAndValidate applies defaults and checks the result.
package config
