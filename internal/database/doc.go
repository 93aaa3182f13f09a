// Package database provides PostgreSQL connection pooling and schema migrations
// for the project store.
//
// Migrations are embedded SQL files applied with golang-migrate. The server can
// apply them on start (database.migrate_on_start) or through the migrate
// subcommand.
package database
