// Package config provides the database connection configuration for the
// library service: the Postgres DSN (env-overridable) and tuned connection
// builders for the three supported database libraries.
package config
