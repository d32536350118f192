// Package domain holds the User and Task entities, their validation rules,
// and the task filter and sort terms understood by every store.
//
// Validation failures are reported as *ValidationError, which maps each
// offending field to human-readable messages and matches ErrValidation
// under errors.Is.
package domain
