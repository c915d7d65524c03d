// Package types defines the Todo entity, its create and patch inputs, the
// TodoStore interface, storage configuration, and the standard errors shared by
// the store, the HTTP layer, and the client.
package types
