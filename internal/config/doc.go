// Package config loads univload.yaml and the environment (.env files, PG*
// and UNIVLOAD_* variables). Resolution order across sources is decided by
// the callers in internal/db and internal/cli: flags, then environment,
// then the config file, then defaults.
package config
