// Package redis implements credential.RefreshTokenStorage on Redis.
//
// Each refresh token digest is a key that expires with the token. A per-user
// set indexes the digests so all of a user's tokens can be revoked at once.
// Consumption uses GETDEL, so concurrent rotations of one token have a
// single winner.
package redis
