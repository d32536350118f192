// Package auth issues opaque authentication tokens and hashes passwords.
//
// Tokens carry no structure: a token is valid exactly while some user
// holds it, so reissuing a user's token revokes the previous one.
package auth
