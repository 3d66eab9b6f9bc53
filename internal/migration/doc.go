/*
Package migration manages versioned database schema changes for
PostgreSQL, MySQL, and SQLite, built on golang-migrate with the SQL
files for each dialect embedded via embed.FS.

DefaultMigrator wraps a migrate instance and exposes Up, Down, Steps,
Goto, Force, Version, Status, and Info. The factory functions build a
migrator from the application config or a raw database URL, and CLI
wraps a Migrator with formatted terminal output for the migrate
subcommand.

SQLite uses the pure-Go modernc.org/sqlite driver so the binary
builds without CGO.
*/
package migration
