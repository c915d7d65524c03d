package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// timeLayout is RFC3339 with a fixed nine-digit fraction. Stored in UTC it
// sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const todoColumns = "id, title, description, completed, created_at"

// Create validates and normalizes in, assigns an id and creation time, and
// inserts the row.
func (b *Backend) Create(ctx context.Context, in types.NewTodo) (types.Todo, error) {
	in, err := in.Normalize()
	if err != nil {
		return types.Todo{}, err
	}

	todo := types.Todo{
		ID:          b.newID(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   b.now().UTC(),
	}

	ctx, cancel := b.opContext(ctx)
	defer cancel()

	q := b.dialect.rebind(`INSERT INTO todos (` + todoColumns + `) VALUES (?, ?, ?, ?, ?)`)
	_, err = b.db.ExecContext(ctx, q,
		todo.ID,
		todo.Title,
		nullableString(todo.Description),
		boolToInt(todo.Completed),
		formatTime(todo.CreatedAt),
	)
	if err != nil {
		return types.Todo{}, unavailable("inserting todo", err)
	}
	return todo, nil
}

// List returns every todo, newest first. Ties on created_at are broken by id
// so the order is total.
func (b *Backend) List(ctx context.Context) ([]types.Todo, error) {
	ctx, cancel := b.opContext(ctx)
	defer cancel()

	q := `SELECT ` + todoColumns + ` FROM todos ORDER BY created_at DESC, id DESC`
	rows, err := b.db.QueryContext(ctx, q)
	if err != nil {
		return nil, unavailable("listing todos", err)
	}
	defer rows.Close()

	todos := []types.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("listing todos", err)
	}
	return todos, nil
}

// Get returns the todo with the given id. A missing id is reported through
// found, not as an error.
func (b *Backend) Get(ctx context.Context, id string) (types.Todo, bool, error) {
	if id == "" {
		return types.Todo{}, false, nil
	}

	ctx, cancel := b.opContext(ctx)
	defer cancel()

	q := b.dialect.rebind(`SELECT ` + todoColumns + ` FROM todos WHERE id = ?`)
	todo, err := scanTodo(b.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Todo{}, false, nil
	}
	if err != nil {
		return types.Todo{}, false, err
	}
	return todo, true, nil
}

// Update applies the present fields of patch in a single statement and
// returns the resulting row. The patch is validated before the row is looked
// up, so an invalid patch fails even for a missing id. An empty patch reads
// the current row.
func (b *Backend) Update(ctx context.Context, id string, patch types.TodoPatch) (types.Todo, bool, error) {
	patch, err := patch.Normalize()
	if err != nil {
		return types.Todo{}, false, err
	}
	if patch.IsEmpty() {
		return b.Get(ctx, id)
	}
	if id == "" {
		return types.Todo{}, false, nil
	}

	ctx, cancel := b.opContext(ctx)
	defer cancel()

	q, args := buildUpdate(id, patch)
	todo, err := scanTodo(b.db.QueryRowContext(ctx, b.dialect.rebind(q), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Todo{}, false, nil
	}
	if err != nil {
		return types.Todo{}, false, err
	}
	return todo, true, nil
}

// buildUpdate assembles the UPDATE for the fields present in patch. Only
// fixed column names are concatenated; values are always bound. id and
// created_at never appear in the SET list.
func buildUpdate(id string, patch types.TodoPatch) (string, []any) {
	var sets []string
	var args []any
	if patch.Title.Set {
		sets = append(sets, "title = ?")
		args = append(args, patch.Title.Value)
	}
	if patch.Description.Set {
		sets = append(sets, "description = ?")
		if patch.Description.Null {
			args = append(args, nil)
		} else {
			args = append(args, patch.Description.Value)
		}
	}
	if patch.Completed.Set {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(patch.Completed.Value))
	}
	args = append(args, id)

	q := `UPDATE todos SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING ` + todoColumns
	return q, args
}

// Delete removes the todo with the given id and reports whether a row was
// removed.
func (b *Backend) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	ctx, cancel := b.opContext(ctx)
	defer cancel()

	res, err := b.db.ExecContext(ctx, b.dialect.rebind(`DELETE FROM todos WHERE id = ?`), id)
	if err != nil {
		return false, unavailable("deleting todo "+id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("deleting todo "+id, err)
	}
	return n > 0, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTodo decodes one row in todoColumns order. sql.ErrNoRows is returned
// unwrapped so callers can map it to not found.
func scanTodo(row rowScanner) (types.Todo, error) {
	var (
		todo      types.Todo
		desc      sql.NullString
		completed int64
		createdAt string
	)
	if err := row.Scan(&todo.ID, &todo.Title, &desc, &completed, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, err
		}
		return types.Todo{}, unavailable("scanning todo", err)
	}

	if desc.Valid && desc.String != "" {
		d := desc.String
		todo.Description = &d
	}
	todo.Completed = completed != 0

	t, err := parseTime(createdAt)
	if err != nil {
		return types.Todo{}, fmt.Errorf("todo %s: %w: %w", todo.ID, types.ErrStorageUnavailable, err)
	}
	todo.CreatedAt = t
	return todo, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts any RFC3339 timestamp so rows written with a shorter
// fraction still decode.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
