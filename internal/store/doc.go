// Package store defines the persistence contracts for users and tasks.
// Backends (Postgres, in-memory) implement UserStore and TaskStore and expose
// them through a Manager that can run a group of operations in one transaction.
package store
