package table

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recorder struct {
	rowClicks []Row
	edits     []Row
	deletes   []Row
}

func (r *recorder) table(rows []Row) *Table {
	return &Table{
		Columns: []string{"ID", "Name"},
		Rows:    rows,
		OnRowClick: func(_ context.Context, row Row) error {
			r.rowClicks = append(r.rowClicks, row)
			return nil
		},
		Actions: &Actions{
			Edit: func(_ context.Context, row Row) error {
				r.edits = append(r.edits, row)
				return nil
			},
			Delete: func(_ context.Context, row Row) error {
				r.deletes = append(r.deletes, row)
				return nil
			},
		},
	}
}

func TestRowClickFiresWithFullRow(t *testing.T) {
	rec := &recorder{}
	tbl := rec.table([]Row{{1, "Paracetamol"}})

	if err := tbl.Click(context.Background(), "1", ActionNone); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if len(rec.rowClicks) != 1 {
		t.Fatalf("expected one row click, got %d", len(rec.rowClicks))
	}
	if got := rec.rowClicks[0]; got[0] != 1 || got[1] != "Paracetamol" {
		t.Fatalf("unexpected row %v", got)
	}
}

func TestActionClickDoesNotReachRowHandler(t *testing.T) {
	rec := &recorder{}
	tbl := rec.table([]Row{{1, "Paracetamol"}, {2, "Ibuprofeno"}})

	if err := tbl.Click(context.Background(), "2", ActionEdit); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if err := tbl.Click(context.Background(), "1", ActionDelete); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if len(rec.rowClicks) != 0 {
		t.Fatalf("row click must not fire for action buttons, got %v", rec.rowClicks)
	}
	if len(rec.edits) != 1 || rec.edits[0].ID() != "2" {
		t.Fatalf("unexpected edits %v", rec.edits)
	}
	if len(rec.deletes) != 1 || rec.deletes[0].ID() != "1" {
		t.Fatalf("unexpected deletes %v", rec.deletes)
	}
}

func TestClickErrors(t *testing.T) {
	rec := &recorder{}
	tbl := rec.table([]Row{{1, "Paracetamol"}})

	if err := tbl.Click(context.Background(), "9", ActionNone); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}

	tbl.Actions = nil
	if err := tbl.Click(context.Background(), "1", ActionEdit); err == nil {
		t.Fatalf("expected error for unconfigured action")
	}

	boom := errors.New("boom")
	tbl.OnRowClick = func(context.Context, Row) error { return boom }
	if err := tbl.Click(context.Background(), "1", ActionNone); !errors.Is(err, boom) {
		t.Fatalf("expected row handler error, got %v", err)
	}
}

func TestClickWithoutRowHandlerIsNoop(t *testing.T) {
	tbl := &Table{Columns: []string{"ID"}, Rows: []Row{{"a"}}}
	if err := tbl.Click(context.Background(), "a", ActionNone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func renderString(t *testing.T, tbl *Table, opts RenderOptions) string {
	t.Helper()
	var b strings.Builder
	if err := tbl.Render(&b, opts); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return b.String()
}

func TestRenderEmptyState(t *testing.T) {
	for _, rows := range [][]Row{nil, {}} {
		html := renderString(t, &Table{Columns: []string{"ID"}, Rows: rows}, RenderOptions{})
		if !strings.Contains(html, "No hay datos para mostrar") {
			t.Fatalf("expected placeholder, got %s", html)
		}
		if strings.Contains(html, "<table") {
			t.Fatalf("empty state must not render table markup")
		}
	}
}

func TestRenderWithActionsAndRowLinks(t *testing.T) {
	rec := &recorder{}
	tbl := rec.table([]Row{{1, "Paracetamol <500mg>"}})

	html := renderString(t, tbl, RenderOptions{
		RowURL:    func(r Row) string { return "/admin/products/rows/" + r.ID() },
		ActionURL: func(a Action, r Row) string { return "/admin/products/rows/" + r.ID() + "/" + string(a) },
	})

	for _, want := range []string{
		"<th>ID</th><th>Name</th><th>Acciones</th>",
		`<tr class="clickable">`,
		`<a class="row-link" href="/admin/products/rows/1">Paracetamol &lt;500mg&gt;</a>`,
		`action="/admin/products/rows/1/edit"`,
		`action="/admin/products/rows/1/delete"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in:\n%s", want, html)
		}
	}
}

func TestRenderOmitsActionsColumnWithoutActions(t *testing.T) {
	tbl := &Table{Columns: []string{"ID", "Name"}, Rows: []Row{{1, "Ana"}}}

	html := renderString(t, tbl, RenderOptions{})

	if strings.Contains(html, "Acciones") || strings.Contains(html, "table-actions") {
		t.Fatalf("actions column should be omitted:\n%s", html)
	}
	if strings.Contains(html, "clickable") {
		t.Fatalf("rows without a click handler are not clickable")
	}
	if !strings.Contains(html, "<td>Ana</td>") {
		t.Fatalf("expected plain cell, got:\n%s", html)
	}
}

func TestRenderOnlyConfiguredActionButtons(t *testing.T) {
	tbl := &Table{
		Columns: []string{"ID"},
		Rows:    []Row{{7}},
		Actions: &Actions{Delete: func(context.Context, Row) error { return nil }},
	}
	html := renderString(t, tbl, RenderOptions{ActionURL: func(a Action, r Row) string { return "/x/" + string(a) }})

	if strings.Contains(html, "btn-edit") {
		t.Fatalf("edit button should not render without handler")
	}
	if !strings.Contains(html, "btn-delete") {
		t.Fatalf("expected delete button")
	}
}
