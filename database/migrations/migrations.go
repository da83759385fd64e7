// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// This package is imported by cmd/aabhushan and internal/server so all
// migrations are registered at startup.
package migrations
