// Package token generates opaque, single-purpose credentials: email verification
// tokens, password reset tokens and refresh tokens.
//
// Tokens are random bytes from crypto/rand encoded as unpadded base64url, so
// they are safe to embed in URLs. They carry no data; the server keeps the
// token→owner mapping. Stores that persist tokens outside process memory
// should keep Hash(token) instead of the raw value.
//
// # Usage
//
//	import "github.com/dmitrymomot/accesskit/pkg/token"
//
//	tok, err := token.Generate()          // 32 random bytes
//	key := token.Hash(tok)                // what a database row stores
//
// Generate fails only when the system randomness source fails.
package token
