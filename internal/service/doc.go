// Package service contains the application use cases for users, sessions
// and tasks. It coordinates domain objects and the stores defined in
// internal/store and never depends on a specific storage backend.
//
// Services receive their dependencies through constructor injection and
// apply transactional boundaries through store.Manager.RunInTx when an
// operation spans several writes, such as deleting a user together with
// their tasks.
//
// Errors are returned as domain, store or auth sentinels (possibly wrapped),
// which the API layer maps to HTTP status codes.
package service
