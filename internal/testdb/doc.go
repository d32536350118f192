// Package testdb provides a migrated PostgreSQL database for integration
// tests. Tests are skipped unless TASKMANAGER_TEST_DATABASE_URL (or
// DATABASE_URL) points at a reachable server.
package testdb
