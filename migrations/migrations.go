// Package migrations embeds the database schema.
package migrations

import _ "embed"

// Schema is the full idempotent DDL for the engine's tables.
//
//go:embed schema.sql
var Schema string
