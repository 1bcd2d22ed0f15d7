// Package memory implements the credential and subscription storage
// interfaces on top of maps guarded by a mutex. It is meant for tests and
// local development; nothing is persisted.
//
// Every method holds the lock only for map access, and values are copied on
// the way in and out so callers never share memory with the store.
package memory
