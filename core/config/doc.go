// Package config centralizes application configuration. Values come from
// environment variables, optionally overlaid from a .env file, with
// defaults declared as struct tags on the partial config types owned by
// each package (database, storage, logger) plus the import-run settings
// defined here.
package config
