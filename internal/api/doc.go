// Package api handles incoming HTTP requests, request validation and
// response formatting for users, sessions and tasks. Resources are rendered
// as JSON:API style documents with hyphenated attribute names.
package api
