package types

import "context"

// TodoStore is the persistence contract for Todo records. Absence is reported
// through the boolean results, never as an error; errors are either
// ErrValidation or ErrStorageUnavailable.
type TodoStore interface {
	// Create validates in, assigns an ID and creation time, and inserts it.
	Create(ctx context.Context, in NewTodo) (Todo, error)

	// List returns every todo, newest first. An empty store yields an
	// empty slice.
	List(ctx context.Context) ([]Todo, error)

	// Get returns the todo with the given ID and whether it exists.
	Get(ctx context.Context, id string) (Todo, bool, error)

	// Update applies the fields present in patch. An empty patch returns the
	// current todo unchanged.
	Update(ctx context.Context, id string, patch TodoPatch) (Todo, bool, error)

	// Delete removes the todo and reports whether a row existed.
	Delete(ctx context.Context, id string) (bool, error)
}
