package admin

import (
	"html/template"
	"io"
	"strings"

	"github.com/efarmaplus/storefront/internal/form"
	"github.com/efarmaplus/storefront/internal/modal"
	"github.com/efarmaplus/storefront/internal/table"
)

type pageView struct {
	Title     string
	Noun      string
	CreateURL string
	Summary   string
	Flashes   []Flash
	Table     template.HTML
	Modal     template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<div class="admin-page">
<div class="admin-header">
<h1>{{.Title}}</h1>
{{- if .Summary}}
<div class="stats-summary">{{.Summary}}</div>
{{- end}}
{{- if .CreateURL}}
<form method="post" action="{{.CreateURL}}"><button type="submit" class="btn btn-primary">➕ Nuevo {{.Noun}}</button></form>
{{- end}}
</div>
{{- range .Flashes}}
<div class="alert alert-{{.Kind}}" role="alert">{{.Message}}</div>
{{- end}}
{{.Table}}
{{.Modal}}
</div>
`))

// Render writes the screen under base, the URL prefix every action posts to.
// Pending alerts are consumed.
func (s *Screen[T]) Render(w io.Writer, base string) error {
	base = strings.TrimRight(base, "/")

	s.mu.Lock()
	view := pageView{Title: s.cfg.Title, Noun: s.cfg.Noun, Flashes: s.drainLocked()}
	if s.cfg.editable() {
		view.CreateURL = base + "/new"
	}
	if s.cfg.Summary != nil {
		view.Summary = s.cfg.Summary(s.items)
	}
	tbl := s.tableLocked()
	ctrl, selected, opts, busy := s.form, s.selected, s.options, s.busy
	s.mu.Unlock()

	tableHTML, err := tbl.HTML(table.RenderOptions{
		RowURL: func(r table.Row) string { return base + "/rows/" + r.ID() },
		ActionURL: func(a table.Action, r table.Row) string {
			return base + "/rows/" + r.ID() + "/" + string(a)
		},
	})
	if err != nil {
		return err
	}
	view.Table = tableHTML

	var body template.HTML
	switch {
	case ctrl != nil:
		submit := "Guardar " + s.cfg.Noun
		if busy {
			submit = "Guardando..."
		}
		body, err = ctrl.HTML(form.RenderOptions{
			Action:       base + "/form",
			SubmitText:   submit,
			CancelAction: base + "/form/cancel",
		})
	case selected != nil && s.cfg.Detail != nil:
		body, err = s.cfg.Detail(*selected, opts, base)
	}
	if err != nil {
		return err
	}

	view.Modal, err = s.modal.HTML(body, modal.RenderOptions{DismissURL: base + "/modal/dismiss"})
	if err != nil {
		return err
	}
	return pageTemplate.Execute(w, view)
}
