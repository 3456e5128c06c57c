package views

import "html/template"

type LoginView struct {
	Email  string
	Next   string
	Errors map[string]string
	Error  string
}

var loginTmpl = template.Must(template.New("login").Parse(`<div class="auth-page">
<div class="auth-header"><h1>💊 eFarma</h1><p>Inicia sesión en tu cuenta</p></div>
{{if .Error}}<p class="alert alert-error">{{.Error}}</p>{{end}}
<form method="post" action="/login" class="auth-form" novalidate>
<input type="hidden" name="next" value="{{.Next}}">
<div class="form-group">
<label for="email">Email</label>
<input type="email" id="email" name="email" value="{{.Email}}" placeholder="tucorreo@gmail.com"{{if index .Errors "email"}} class="error"{{end}}>
{{with index .Errors "email"}}<span class="error-message">{{.}}</span>{{end}}
</div>
<div class="form-group">
<label for="password">Contraseña</label>
<input type="password" id="password" name="password" placeholder="••••••••"{{if index .Errors "password"}} class="error"{{end}}>
{{with index .Errors "password"}}<span class="error-message">{{.}}</span>{{end}}
</div>
<button type="submit" class="btn btn-primary">Iniciar Sesión</button>
</form>
<div class="auth-footer"><p>¿No tienes cuenta? <a href="/register" class="link-primary">Regístrate aquí</a></p></div>
</div>
`))

func LoginBody(v LoginView) (template.HTML, error) { return Fragment(loginTmpl, v) }

// RegisterView carries the sign-up form back to the page. Passwords are
// never echoed.
type RegisterView struct {
	Name   string
	Email  string
	Next   string
	Errors map[string]string
	Error  string
}

var registerTmpl = template.Must(template.New("register").Parse(`<div class="auth-page">
<div class="auth-header"><h1>💊 eFarma</h1><p>Crea tu cuenta</p></div>
{{if .Error}}<p class="alert alert-error">{{.Error}}</p>{{end}}
<form method="post" action="/register" class="auth-form" novalidate>
<input type="hidden" name="next" value="{{.Next}}">
<div class="form-group">
<label for="nombre">Nombre completo</label>
<input type="text" id="nombre" name="nombre" value="{{.Name}}" placeholder="Juan Pérez"{{if index .Errors "nombre"}} class="error"{{end}}>
{{with index .Errors "nombre"}}<span class="error-message">{{.}}</span>{{end}}
</div>
<div class="form-group">
<label for="email">Email</label>
<input type="email" id="email" name="email" value="{{.Email}}" placeholder="tucorreo@gmail.com"{{if index .Errors "email"}} class="error"{{end}}>
{{with index .Errors "email"}}<span class="error-message">{{.}}</span>{{end}}
</div>
<div class="form-group">
<label for="password">Contraseña</label>
<input type="password" id="password" name="password" placeholder="••••••••"{{if index .Errors "password"}} class="error"{{end}}>
{{with index .Errors "password"}}<span class="error-message">{{.}}</span>{{end}}
</div>
<div class="form-group">
<label for="confirmPassword">Confirmar contraseña</label>
<input type="password" id="confirmPassword" name="confirmPassword" placeholder="••••••••"{{if index .Errors "confirmPassword"}} class="error"{{end}}>
{{with index .Errors "confirmPassword"}}<span class="error-message">{{.}}</span>{{end}}
</div>
<button type="submit" class="btn btn-primary">Crear Cuenta</button>
</form>
<div class="auth-footer"><p>¿Ya tienes cuenta? <a href="/login" class="link-primary">Inicia sesión aquí</a></p></div>
</div>
`))

func RegisterBody(v RegisterView) (template.HTML, error) { return Fragment(registerTmpl, v) }
