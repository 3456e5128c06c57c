package controllers

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/efarmaplus/storefront/api/middleware"
	"github.com/efarmaplus/storefront/api/responses"
	"github.com/efarmaplus/storefront/api/validators"
	"github.com/efarmaplus/storefront/api/views"
	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/internal/form"
	"github.com/efarmaplus/storefront/pkg/auth"
	"github.com/efarmaplus/storefront/pkg/config"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
	"github.com/efarmaplus/storefront/pkg/logger"
	"github.com/efarmaplus/storefront/pkg/security"
)

const minPasswordLen = 6

var loginFields = []form.Field{
	form.Email{Base: form.Base{Name: "email", Label: "Email", Required: true}},
	form.Text{Base: form.Base{Name: "password", Label: "Contraseña", Required: true}},
}

var registerFields = []form.Field{
	form.Text{Base: form.Base{Name: "nombre", Label: "Nombre completo", Required: true}},
	form.Email{Base: form.Base{Name: "email", Label: "Email", Required: true}},
	form.Text{Base: form.Base{Name: "password", Label: "Contraseña", Required: true}},
	form.Text{Base: form.Base{Name: "confirmPassword", Label: "Confirmar contraseña", Required: true}},
}

var gmailAddress = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@gmail\.com$`)

const minNameLen = 3

// UserDirectory resolves accounts by email.
type UserDirectory interface {
	GetAll(ctx context.Context) ([]catalog.User, error)
}

// AccountStore also creates customer accounts.
type AccountStore interface {
	UserDirectory
	Create(ctx context.Context, u catalog.User) (catalog.User, error)
}

// RoleSource lists the backend roles so new accounts get the customer role id.
type RoleSource interface {
	Roles(ctx context.Context) []catalog.Lookup
}

// SessionEnder drops the per-session admin state on logout.
type SessionEnder interface {
	End(sessionID string)
}

func LoginPage(carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := views.LoginView{Next: validators.SafeReturn(r.URL.Query().Get("next"), "")}
		renderLogin(w, r, carts, logg, http.StatusOK, view)
	}
}

// Login issues the role-flag token for an existing active account. The
// password is length-checked but never verified: the backend offers no
// credential check, so knowing an account's email is enough to sign in as
// it. Because that token also unlocks /admin, admin accounts are refused
// unless EFARMAPLUS_UNVERIFIED_ADMIN_LOGIN is set.
func Login(cfg *config.Config, users UserDirectory, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			responses.WriteHTMLError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form"))
			return
		}
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		view := views.LoginView{Email: email, Next: validators.SafeReturn(r.PostFormValue("next"), "")}

		errs := form.Validate(loginFields, form.Values{"email": email, "password": password})
		if _, failed := errs["password"]; !failed && len(password) < minPasswordLen {
			errs["password"] = "La contraseña debe tener al menos 6 caracteres"
		}
		if len(errs) > 0 {
			view.Errors = errs
			renderLogin(w, r, carts, logg, http.StatusUnprocessableEntity, view)
			return
		}

		accounts, err := users.GetAll(ctx)
		if err != nil {
			logg.Error(ctx, "login.users_unavailable", err)
			view.Error = "No se pudo iniciar sesión, intenta nuevamente"
			renderLogin(w, r, carts, logg, http.StatusBadGateway, view)
			return
		}
		user, found := findByEmail(accounts, email)
		switch {
		case !found:
			view.Error = "Usuario no encontrado"
		case !user.Active:
			view.Error = "Usuario inactivo"
		}
		if view.Error != "" {
			logg.Warn(logg.WithField(ctx, "reason", view.Error), "login.rejected")
			renderLogin(w, r, carts, logg, http.StatusUnauthorized, view)
			return
		}
		if user.IsAdmin() && !cfg.FeatureFlags.UnverifiedAdminLogin {
			logg.Warn(logg.WithField(ctx, "user_id", user.ID), "login.admin_disabled")
			view.Error = "El acceso de administrador está deshabilitado"
			renderLogin(w, r, carts, logg, http.StatusForbidden, view)
			return
		}

		role := auth.RoleUser
		if user.IsAdmin() {
			role = auth.RoleAdmin
		}
		if err := signIn(w, cfg, user, role); err != nil {
			responses.WriteHTMLError(ctx, logg, w, err)
			return
		}

		logg.Info(logg.WithActorRole(logg.WithField(ctx, "user_id", user.ID), role), "login.succeeded")
		responses.Redirect(w, r, landingFor(role, view.Next))
	}
}

func RegisterPage(carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := views.RegisterView{Next: validators.SafeReturn(r.URL.Query().Get("next"), "")}
		renderRegister(w, r, carts, logg, http.StatusOK, view)
	}
}

// Register creates a customer account in the backend with an argon2id
// password hash, then signs it in with the customer role.
func Register(cfg *config.Config, users AccountStore, roles RoleSource, carts CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			responses.WriteHTMLError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form"))
			return
		}
		values := form.Values{
			"nombre":          strings.TrimSpace(r.PostFormValue("nombre")),
			"email":           strings.TrimSpace(r.PostFormValue("email")),
			"password":        r.PostFormValue("password"),
			"confirmPassword": r.PostFormValue("confirmPassword"),
		}
		name, email, password := values.String("nombre"), values.String("email"), values.String("password")
		view := views.RegisterView{Name: name, Email: email, Next: validators.SafeReturn(r.PostFormValue("next"), "")}

		if errs := validateRegistration(values); len(errs) > 0 {
			view.Errors = errs
			renderRegister(w, r, carts, logg, http.StatusUnprocessableEntity, view)
			return
		}

		accounts, err := users.GetAll(ctx)
		if err != nil {
			logg.Error(ctx, "register.users_unavailable", err)
			view.Error = "No se pudo crear la cuenta, intenta nuevamente"
			renderRegister(w, r, carts, logg, http.StatusBadGateway, view)
			return
		}
		if _, taken := findByEmail(accounts, email); taken {
			view.Errors = map[string]string{"email": "Este email ya está registrado"}
			renderRegister(w, r, carts, logg, http.StatusConflict, view)
			return
		}

		hash, err := security.HashPassword(password, cfg.Password)
		if err != nil {
			responses.WriteHTMLError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password"))
			return
		}
		account := catalog.User{
			Name:     name,
			Email:    strings.ToLower(email),
			Role:     catalog.RoleUser,
			Active:   true,
			Password: hash,
		}
		if roles != nil {
			account.RoleID = roleID(roles.Roles(ctx), catalog.RoleUser)
		}
		created, err := users.Create(ctx, account)
		if err != nil {
			logg.Error(ctx, "register.create_failed", err)
			view.Error = "No se pudo crear la cuenta, intenta nuevamente"
			renderRegister(w, r, carts, logg, http.StatusBadGateway, view)
			return
		}
		if created.Name == "" || created.Name == "Usuario" {
			created.Name = account.Name
		}
		if created.Email == "" {
			created.Email = account.Email
		}

		if err := signIn(w, cfg, created, auth.RoleUser); err != nil {
			responses.WriteHTMLError(ctx, logg, w, err)
			return
		}
		logg.Info(logg.WithActorRole(logg.WithField(ctx, "user_id", created.ID), auth.RoleUser), "register.succeeded")
		responses.Redirect(w, r, landingFor(auth.RoleUser, view.Next))
	}
}

// validateRegistration applies the required and email checks first, then the
// sign-up rules on fields that passed them.
func validateRegistration(values form.Values) form.Errors {
	errs := form.Validate(registerFields, values)
	rule := func(field, msg string, failed bool) {
		if _, done := errs[field]; !done && failed {
			errs[field] = msg
		}
	}
	email := values.String("email")
	password := values.String("password")
	rule("nombre", "El nombre debe tener al menos 3 caracteres", len([]rune(values.String("nombre"))) < minNameLen)
	rule("email", "Solo se aceptan correos @gmail.com", !strings.HasSuffix(email, "@gmail.com"))
	rule("email", "Email inválido. Use el formato correo@gmail.com", !gmailAddress.MatchString(email))
	rule("password", "La contraseña debe tener al menos 6 caracteres", len(password) < minPasswordLen)
	rule("confirmPassword", "Las contraseñas no coinciden", values.String("confirmPassword") != password)
	return errs
}

func roleID(roles []catalog.Lookup, name string) int64 {
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return r.ID
		}
	}
	return 0
}

func signIn(w http.ResponseWriter, cfg *config.Config, user catalog.User, role string) error {
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   role,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	middleware.SetTokenCookie(w, token, cfg.JWT.TTL(), cfg.Session.Secure)
	return nil
}

func Logout(sessions SessionEnder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.ClearTokenCookie(w)
		if sessions != nil {
			sessions.End(middleware.SessionIDFromContext(r.Context()))
		}
		logg.Info(r.Context(), "logout")
		responses.Redirect(w, r, "/")
	}
}

func findByEmail(users []catalog.User, email string) (catalog.User, bool) {
	for _, u := range users {
		if strings.EqualFold(strings.TrimSpace(u.Email), email) {
			return u, true
		}
	}
	return catalog.User{}, false
}

// landingFor honours an explicit next path, except that shoppers are never
// sent into the admin area.
func landingFor(role, next string) string {
	if next != "" && (role == auth.RoleAdmin || !strings.HasPrefix(next, "/admin")) {
		return next
	}
	if role == auth.RoleAdmin {
		return "/admin"
	}
	return "/"
}

func renderLogin(w http.ResponseWriter, r *http.Request, carts CartFactory, logg *logger.Logger, status int, view views.LoginView) {
	body, ok := renderBody(w, r, logg)(views.LoginBody(view))
	if !ok {
		return
	}
	writePage(w, r, logg, status, views.Page{Title: "Iniciar sesión", CartCount: cartCount(r, carts), Body: body})
}

func renderRegister(w http.ResponseWriter, r *http.Request, carts CartFactory, logg *logger.Logger, status int, view views.RegisterView) {
	body, ok := renderBody(w, r, logg)(views.RegisterBody(view))
	if !ok {
		return
	}
	writePage(w, r, logg, status, views.Page{Title: "Crear cuenta", CartCount: cartCount(r, carts), Body: body})
}
