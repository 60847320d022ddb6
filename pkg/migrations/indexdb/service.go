// Package indexdb holds all the migrations for the index database
package indexdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the index database
var Migrations = migrate.NewMigrations()
