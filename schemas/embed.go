// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains the SQL migrations of every supported driver,
// one directory per driver under migrations/.
//
//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var Migrations embed.FS
