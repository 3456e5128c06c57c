package table

import (
	"context"
	"errors"
	"fmt"
)

// ErrRowNotFound is returned when a click targets a row id not in the data.
var ErrRowNotFound = errors.New("row not found")

// Row is one record's display cells, parallel to the columns. The first cell
// identifies the row.
type Row []any

// ID returns the first cell as a string.
func (r Row) ID() string {
	if len(r) == 0 {
		return ""
	}
	return fmt.Sprint(r[0])
}

// Handler reacts to a click on a row.
type Handler func(ctx context.Context, row Row) error

// Actions are per-row buttons. Nil handlers render no button.
type Actions struct {
	Edit   Handler
	Delete Handler
}

// Action names the element a click landed on.
type Action string

const (
	ActionNone   Action = ""
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Event is a click travelling from its target up to the row.
type Event struct {
	Row     Row
	Action  Action
	stopped bool
}

// StopPropagation keeps the event from reaching the row click handler.
func (e *Event) StopPropagation() { e.stopped = true }

func (e *Event) Stopped() bool { return e.stopped }

// Table renders rows of cells under column headers. Rows whose length
// differs from the column count are rendered as given.
type Table struct {
	Columns    []string
	Rows       []Row
	OnRowClick Handler
	Actions    *Actions
}

// Empty reports whether there is nothing to render.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Click dispatches a click on rowID. Clicks on an action button run the
// action after stopping propagation, so the row handler never sees them.
func (t *Table) Click(ctx context.Context, rowID string, action Action) error {
	row, ok := t.find(rowID)
	if !ok {
		return ErrRowNotFound
	}
	ev := &Event{Row: row, Action: action}

	if action != ActionNone {
		handler := t.actionHandler(action)
		if handler == nil {
			return fmt.Errorf("no %s action configured", action)
		}
		ev.StopPropagation()
		if err := handler(ctx, row); err != nil {
			return err
		}
	}

	if ev.Stopped() || t.OnRowClick == nil {
		return nil
	}
	return t.OnRowClick(ctx, row)
}

func (t *Table) actionHandler(action Action) Handler {
	if t.Actions == nil {
		return nil
	}
	switch action {
	case ActionEdit:
		return t.Actions.Edit
	case ActionDelete:
		return t.Actions.Delete
	default:
		return nil
	}
}

func (t *Table) find(rowID string) (Row, bool) {
	for _, r := range t.Rows {
		if r.ID() == rowID {
			return r, true
		}
	}
	return nil, false
}
