package types

import (
	"strings"
	"time"
)

// Todo is a single task. ID and CreatedAt are assigned by the store and never
// change afterwards.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTodo is the input to TodoStore.Create.
type NewTodo struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// Normalize trims the title and folds a blank description into no
// description. Returns ErrInvalidTitle if the title is blank.
func (n NewTodo) Normalize() (NewTodo, error) {
	title := strings.TrimSpace(n.Title)
	if title == "" {
		return NewTodo{}, ErrInvalidTitle
	}
	return NewTodo{
		Title:       title,
		Description: NormalizeDescription(n.Description),
	}, nil
}

// TodoPatch is the input to TodoStore.Update. Absent fields are left
// untouched; a null description clears it.
type TodoPatch struct {
	Title       Optional[string] `json:"title,omitzero"`
	Description Optional[string] `json:"description,omitzero"`
	Completed   Optional[bool]   `json:"completed,omitzero"`
}

// IsEmpty reports whether the patch carries no fields.
func (p TodoPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Completed.Set
}

// Normalize validates the present fields. A title must be a non-blank string
// and completed must not be null. A blank description becomes null.
func (p TodoPatch) Normalize() (TodoPatch, error) {
	out := p
	if p.Title.Set {
		title := strings.TrimSpace(p.Title.Value)
		if p.Title.Null || title == "" {
			return TodoPatch{}, ErrInvalidTitle
		}
		out.Title = Some(title)
	}
	if p.Description.Set && !p.Description.Null {
		if NormalizeDescription(&p.Description.Value) == nil {
			out.Description = Null[string]()
		}
	}
	if p.Completed.Set && p.Completed.Null {
		return TodoPatch{}, ErrInvalidCompleted
	}
	return out, nil
}

// NormalizeDescription returns nil for a missing or blank description and a
// copy of the original text otherwise.
func NormalizeDescription(desc *string) *string {
	if desc == nil || strings.TrimSpace(*desc) == "" {
		return nil
	}
	d := *desc
	return &d
}
