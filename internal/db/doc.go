// Package db resolves PostgreSQL connection settings from flags, environment,
// univload.yaml and defaults, and opens pgx pools with retry on transient
// failures.
package db
