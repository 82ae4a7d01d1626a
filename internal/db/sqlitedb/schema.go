package sqlitedb

import (
	_ "embed"
)

// Schema is applied on every open; it is idempotent.
//
//go:embed schema.sql
var Schema string
