package table

import (
	"html/template"
	"io"
	"strings"
)

// RenderOptions supplies the URLs the rendered markup posts clicks to.
type RenderOptions struct {
	// RowURL links each cell of a clickable row. Required when OnRowClick is set.
	RowURL func(row Row) string
	// ActionURL is posted to by the edit and delete buttons.
	ActionURL func(action Action, row Row) string
	// EmptyText replaces the default empty-state message.
	EmptyText string
}

type rowView struct {
	Cells     []any
	RowURL    string
	EditURL   string
	DeleteURL string
}

type tableView struct {
	Empty      bool
	EmptyText  string
	Columns    []string
	Clickable  bool
	HasActions bool
	Rows       []rowView
}

var tableTemplate = template.Must(template.New("table").Parse(`<div class="table-container">
{{- if .Empty}}
<div class="table-empty"><p>{{.EmptyText}}</p></div>
{{- else}}
<table class="dynamic-table">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}{{if .HasActions}}<th>Acciones</th>{{end}}</tr></thead>
<tbody>
{{- range $row := .Rows}}
<tr{{if $.Clickable}} class="clickable"{{end}}>
{{- range .Cells}}<td>{{if $.Clickable}}<a class="row-link" href="{{$row.RowURL}}">{{.}}</a>{{else}}{{.}}{{end}}</td>{{end}}
{{- if $.HasActions}}
<td class="table-actions">
{{- if .EditURL}}<form method="post" action="{{.EditURL}}" class="inline"><button type="submit" class="btn-action btn-edit" aria-label="Editar">Editar</button></form>{{end}}
{{- if .DeleteURL}}<form method="post" action="{{.DeleteURL}}" class="inline"><button type="submit" class="btn-action btn-delete" aria-label="Eliminar">Eliminar</button></form>{{end}}
</td>
{{- end}}
</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</div>
`))

// Render writes the table markup, or the empty-state placeholder when there
// are no rows.
func (t *Table) Render(w io.Writer, opts RenderOptions) error {
	return tableTemplate.Execute(w, t.view(opts))
}

// HTML renders the table into a template fragment.
func (t *Table) HTML(opts RenderOptions) (template.HTML, error) {
	var b strings.Builder
	if err := t.Render(&b, opts); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func (t *Table) view(opts RenderOptions) tableView {
	v := tableView{EmptyText: opts.EmptyText}
	if v.EmptyText == "" {
		v.EmptyText = "No hay datos para mostrar"
	}
	if t.Empty() {
		v.Empty = true
		return v
	}
	v.Columns = t.Columns
	v.Clickable = t.OnRowClick != nil && opts.RowURL != nil
	v.HasActions = t.Actions != nil
	for _, r := range t.Rows {
		rv := rowView{Cells: []any(r)}
		if v.Clickable {
			rv.RowURL = opts.RowURL(r)
		}
		if t.Actions != nil && opts.ActionURL != nil {
			if t.Actions.Edit != nil {
				rv.EditURL = opts.ActionURL(ActionEdit, r)
			}
			if t.Actions.Delete != nil {
				rv.DeleteURL = opts.ActionURL(ActionDelete, r)
			}
		}
		v.Rows = append(v.Rows, rv)
	}
	return v
}
