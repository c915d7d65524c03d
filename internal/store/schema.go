package store

const createTodos = `CREATE TABLE IF NOT EXISTS todos (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
)`

const idxTodosCreatedAt = `CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at)`

// schemaDDL is run in order on every Open.
var schemaDDL = []string{
	createTodos,
	idxTodosCreatedAt,
}
