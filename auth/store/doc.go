// Package store defines the token persistence contract used by the auth
// client, together with an in-memory and an afs-backed implementation.
//
// A Store only holds what the client gives it. Code verifier and state
// persistence are optional capabilities, detected by the client with a type
// assertion on VerifierStore and StateStore.
package store
