package views

import (
	"bytes"
	"html/template"
	"io"
)

// User is the signed-in identity shown in the header.
type User struct {
	Name    string
	IsAdmin bool
}

// Page is everything the shared layout needs around a rendered body.
type Page struct {
	Title     string
	User      *User
	CartCount int
	// Overflow mirrors the document scroll lock held by open modals.
	Overflow string
	// KeyURL receives forwarded key presses while a modal is open; empty
	// disables the forwarding script.
	KeyURL    string
	ReturnURL string
	Body      template.HTML
}

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · eFarmaPlus</title>
<link rel="stylesheet" href="/static/app.css">
</head>
<body style="overflow: {{.Overflow}}">
<header class="site-header">
<a class="brand" href="/">eFarmaPlus</a>
<nav>
<a href="/">Inicio</a>
<a href="/products">Productos</a>
<a href="/cart" class="cart-link">🛒 Carrito{{if .CartCount}} <span class="cart-badge">{{.CartCount}}</span>{{end}}</a>
{{if .User}}{{if .User.IsAdmin}}<a href="/admin">Panel Admin</a>{{end}}
<span class="user-name">{{.User.Name}}</span>
<form method="post" action="/logout" class="inline-form"><button type="submit">Cerrar sesión</button></form>
{{else}}<a href="/login">Iniciar sesión</a>
<a href="/register">Registrarse</a>{{end}}
</nav>
</header>
<main>
{{.Body}}
</main>
{{if .KeyURL}}<form id="key-form" method="post" action="{{.KeyURL}}" hidden>
<input type="hidden" name="key" value="Escape">
<input type="hidden" name="return" value="{{.ReturnURL}}">
</form>
<script>
document.addEventListener('keydown', function (e) {
  if (e.key === 'Escape') { document.getElementById('key-form').submit(); }
});
</script>{{end}}
</body>
</html>
`))

// Render writes the page wrapped in the shared layout.
func Render(w io.Writer, p Page) error {
	if p.Overflow == "" {
		p.Overflow = "auto"
	}
	return layout.Execute(w, p)
}

// Fragment executes t into a string ready to be used as a page body.
func Fragment(t *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
