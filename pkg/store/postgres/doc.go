// Package postgres implements credential.Storage and subscription.Store on
// PostgreSQL through pgx.
//
// Tokens are stored as the digests the services hand in. Refresh tokens are
// consumed with DELETE ... RETURNING so concurrent rotations of one token
// have a single winner. Single-use verification and reset tokens are kept
// at one per user by a unique constraint and an upsert.
package postgres
