package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func TestFormatTable(t *testing.T) {
	got := formatTable(
		[]string{"A", "BB"},
		[][]string{{"xxx", "y"}, {"z", "long cell"}},
	)
	assert.Equal(t, "A    BB\nxxx  y\nz    long cell\n", got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "line one", truncate("line\none", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", truncate(strings.Repeat("é", 20), 10))
}

func TestPrinter_PlainText(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf}
	desc := "notes"
	todo := types.Todo{
		ID:          "abc",
		Title:       "Buy milk",
		Description: &desc,
		Completed:   true,
		CreatedAt:   time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC),
	}

	require.NoError(t, p.todo(todo))
	want := "ID:          abc\n" +
		"Title:       Buy milk\n" +
		"Description: notes\n" +
		"Completed:   [x]\n" +
		"Created:     2025-05-06 07:08:09Z\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, p.todos(nil))
	assert.Equal(t, "No todos.\n", buf.String())
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf, json: true}

	require.NoError(t, p.todos([]types.Todo{}))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	require.NoError(t, p.result(map[string]string{"deleted": "abc"}, "Deleted %s", "abc"))
	assert.JSONEq(t, `{"deleted":"abc"}`, buf.String())
}
