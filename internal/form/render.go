package form

import (
	"html/template"
	"io"
	"strings"
)

// RenderOptions controls the surrounding form markup.
type RenderOptions struct {
	Action     string
	SubmitText string
	// CancelAction is posted to by the cancel button. Empty hides the button.
	CancelAction string
	CancelText   string
	// SelectPlaceholder labels the empty "unselected" option.
	SelectPlaceholder string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.SubmitText == "" {
		o.SubmitText = "Guardar"
	}
	if o.CancelText == "" {
		o.CancelText = "Cancelar"
	}
	if o.SelectPlaceholder == "" {
		o.SelectPlaceholder = "Seleccionar..."
	}
	return o
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Template    string
	Type        string
	Name        string
	Label       string
	Placeholder string
	Required    bool
	Value       string
	Error       string
	Min         string
	Max         string
	Step        string
	Rows        int
	Accept      string
	Options     []optionView
	Preview     template.URL
	FileName    string
}

type formView struct {
	RenderOptions
	Multipart bool
	Fields    []fieldView
}

var formTemplate = template.Must(template.New("form").Parse(`
{{- define "label"}}<label for="{{.Name}}">{{.Label}}{{if .Required}}<span class="required">*</span>{{end}}</label>{{end -}}
{{- define "error"}}{{if .Error}}<span class="error-message">{{.Error}}</span>{{end}}{{end -}}
<form method="post" action="{{.Action}}" class="dynamic-form"{{if .Multipart}} enctype="multipart/form-data"{{end}}>
{{- range .Fields}}
<div class="form-group">
{{- if eq .Template "textarea"}}
{{template "label" .}}
<textarea id="{{.Name}}" name="{{.Name}}"{{if .Rows}} rows="{{.Rows}}"{{end}}{{if .Placeholder}} placeholder="{{.Placeholder}}"{{end}}{{if .Error}} class="error"{{end}}>{{.Value}}</textarea>
{{template "error" .}}
{{- else if eq .Template "select"}}
{{template "label" .}}
<select id="{{.Name}}" name="{{.Name}}"{{if .Error}} class="error"{{end}}>
<option value="">{{$.SelectPlaceholder}}</option>
{{- range .Options}}
<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
{{template "error" .}}
{{- else if eq .Template "file"}}
<div class="input-file-container">
{{if .Label}}<label class="input-file-label" for="{{.Name}}">{{.Label}}</label>{{end}}
{{- if .Preview}}
<div class="input-file-preview"><img src="{{.Preview}}" alt="Preview"></div>
{{- end}}
<input type="file" id="{{.Name}}" name="{{.Name}}" accept="{{.Accept}}">
{{- if .FileName}}<span class="input-file-name">{{.FileName}}</span>{{end}}
{{- if .Error}}<span class="input-file-error">{{.Error}}</span>{{end}}
</div>
{{- else}}
{{template "label" .}}
<input type="{{.Type}}" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}"{{if .Min}} min="{{.Min}}"{{end}}{{if .Max}} max="{{.Max}}"{{end}}{{if .Step}} step="{{.Step}}"{{end}}{{if .Placeholder}} placeholder="{{.Placeholder}}"{{end}}{{if .Error}} class="error"{{end}}>
{{template "error" .}}
{{- end}}
</div>
{{- end}}
<div class="form-actions">
<button type="submit" class="btn btn-primary">{{.SubmitText}}</button>
{{- if .CancelAction}}
<button type="submit" class="btn btn-outline" formaction="{{.CancelAction}}" formnovalidate>{{.CancelText}}</button>
{{- end}}
</div>
</form>
`))

// Render writes the form markup for the controller's current state.
func (c *Controller) Render(w io.Writer, opts RenderOptions) error {
	opts = opts.withDefaults()
	st := c.State()
	view := formView{RenderOptions: opts}
	for _, f := range c.fields {
		fv := viewFor(f, st, c.initial)
		if fv.Template == "file" {
			view.Multipart = true
		}
		view.Fields = append(view.Fields, fv)
	}
	return formTemplate.Execute(w, view)
}

// HTML renders the form into a template fragment.
func (c *Controller) HTML(opts RenderOptions) (template.HTML, error) {
	var b strings.Builder
	if err := c.Render(&b, opts); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func viewFor(f Field, st State, initial Values) fieldView {
	attrs := f.Attrs()
	v := fieldView{
		Template:    "input",
		Type:        string(f.Kind()),
		Name:        attrs.Name,
		Label:       attrs.Label,
		Placeholder: attrs.Placeholder,
		Required:    attrs.Required,
		Value:       st.Values.String(attrs.Name),
		Error:       st.Errors[attrs.Name],
	}
	if attrs.Min != nil {
		v.Min = formatBound(*attrs.Min)
	}
	if attrs.Max != nil {
		v.Max = formatBound(*attrs.Max)
	}

	switch field := f.(type) {
	case Text, Email:
	case Number:
		v.Step = field.Step
	case Textarea:
		v.Template = "textarea"
		v.Rows = field.Rows
	case Select:
		v.Template = "select"
		for _, o := range field.Options {
			v.Options = append(v.Options, optionView{Value: o.Value, Label: o.Label, Selected: o.Value == v.Value})
		}
	case File:
		v.Template = "file"
		v.Accept = field.accept()
		v.Value = ""
		if fh, ok := st.Values.File(attrs.Name); ok {
			v.FileName = fh.Filename
		}
		preview := st.Previews[attrs.Name]
		if preview == "" {
			preview = initial.String(attrs.Name + "Preview")
		}
		v.Preview = previewURL(preview)
	}
	return v
}

// previewURL admits data image URIs and http(s) or rooted paths; anything
// else renders no preview.
func previewURL(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "data:image/"),
		strings.HasPrefix(s, "https://"),
		strings.HasPrefix(s, "http://"),
		strings.HasPrefix(s, "/"):
		return template.URL(s)
	default:
		return ""
	}
}
