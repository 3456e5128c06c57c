package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efarmaplus/storefront/api/middleware"
	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/pkg/auth"
	"github.com/efarmaplus/storefront/pkg/config"
	"github.com/efarmaplus/storefront/pkg/logger"
	"github.com/efarmaplus/storefront/pkg/security"
)

type fakeUsers struct {
	users []catalog.User
	err   error
}

func (f fakeUsers) GetAll(context.Context) ([]catalog.User, error) {
	return f.users, f.err
}

type recordingEnder struct{ ended []string }

func (r *recordingEnder) End(sessionID string) { r.ended = append(r.ended, sessionID) }

func authConfig() *config.Config {
	return &config.Config{
		JWT:          config.JWTConfig{Secret: "secret", Issuer: "efarmaplus", ExpirationMinutes: 60},
		Password:     config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
		FeatureFlags: config.FeatureFlagsConfig{UnverifiedAdminLogin: true},
	}
}

type fakeAccounts struct {
	fakeUsers
	createErr error
	created   []catalog.User
}

func (f *fakeAccounts) Create(_ context.Context, u catalog.User) (catalog.User, error) {
	if f.createErr != nil {
		return catalog.User{}, f.createErr
	}
	f.created = append(f.created, u)
	u.ID = 42
	return u, nil
}

type fakeRoles []catalog.Lookup

func (f fakeRoles) Roles(context.Context) []catalog.Lookup { return f }

func directory() fakeUsers {
	return fakeUsers{users: []catalog.User{
		{ID: 1, Name: "Admin", Email: "admin@gmail.com", Role: catalog.RoleAdmin, Active: true},
		{ID: 2, Name: "Ana", Email: "ana@gmail.com", Role: catalog.RoleUser, Active: true},
		{ID: 3, Name: "Beto", Email: "beto@gmail.com", Role: catalog.RoleUser},
	}}
}

func postLogin(users UserDirectory, values url.Values) *http.Response {
	h := Login(authConfig(), users, newCarts(), logger.Nop())
	return serve(h, withIdentity(formRequest(http.MethodPost, "/login", values), "")).Result()
}

func tokenCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestLoginSuccessSetsRoleToken(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		next     string
		role     string
		location string
	}{
		{name: "admin default", email: "admin@gmail.com", role: auth.RoleAdmin, location: "/admin"},
		{name: "shopper default", email: "ANA@gmail.com", role: auth.RoleUser, location: "/"},
		{name: "shopper next", email: "ana@gmail.com", next: "/cart", role: auth.RoleUser, location: "/cart"},
		{name: "shopper kept out of admin", email: "ana@gmail.com", next: "/admin/products", role: auth.RoleUser, location: "/"},
		{name: "foreign next", email: "admin@gmail.com", next: "//evil.example", role: auth.RoleAdmin, location: "/admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postLogin(directory(), url.Values{"email": {tc.email}, "password": {"secreto"}, "next": {tc.next}})
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tc.location, resp.Header.Get("Location"))

			cookie := tokenCookie(resp)
			require.NotNil(t, cookie)
			claims, err := auth.ParseAccessToken(authConfig().JWT, cookie.Value)
			require.NoError(t, err)
			assert.Equal(t, tc.role, claims.Role)
		})
	}
}

func TestLoginRejections(t *testing.T) {
	cases := []struct {
		name    string
		users   fakeUsers
		values  url.Values
		status  int
		message string
	}{
		{name: "missing email", users: directory(), values: url.Values{"password": {"secreto"}}, status: http.StatusUnprocessableEntity, message: "Email is required"},
		{name: "bad email", users: directory(), values: url.Values{"email": {"ana"}, "password": {"secreto"}}, status: http.StatusUnprocessableEntity, message: "invalid email"},
		{name: "short password", users: directory(), values: url.Values{"email": {"ana@gmail.com"}, "password": {"123"}}, status: http.StatusUnprocessableEntity, message: "al menos 6 caracteres"},
		{name: "unknown", users: directory(), values: url.Values{"email": {"nadie@gmail.com"}, "password": {"secreto"}}, status: http.StatusUnauthorized, message: "Usuario no encontrado"},
		{name: "inactive", users: directory(), values: url.Values{"email": {"beto@gmail.com"}, "password": {"secreto"}}, status: http.StatusUnauthorized, message: "Usuario inactivo"},
		{name: "backend down", users: fakeUsers{err: errors.New("down")}, values: url.Values{"email": {"ana@gmail.com"}, "password": {"secreto"}}, status: http.StatusBadGateway, message: "intenta nuevamente"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := Login(authConfig(), tc.users, newCarts(), logger.Nop())
			rec := serve(h, withIdentity(formRequest(http.MethodPost, "/login", tc.values), ""))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
			assert.Nil(t, tokenCookie(rec.Result()))
		})
	}
}

func TestLoginPageKeepsSafeNext(t *testing.T) {
	h := LoginPage(newCarts(), logger.Nop())

	rec := serve(h, withIdentity(formRequest(http.MethodGet, "/login?next=/cart", nil), ""))
	assert.Contains(t, rec.Body.String(), `name="next" value="/cart"`)

	rec = serve(h, withIdentity(formRequest(http.MethodGet, "/login?next=https://evil.example", nil), ""))
	assert.Contains(t, rec.Body.String(), `name="next" value=""`)
}

func TestLogoutClearsTokenAndSession(t *testing.T) {
	ender := &recordingEnder{}
	rec := serve(Logout(ender, logger.Nop()), withIdentity(formRequest(http.MethodPost, "/logout", nil), auth.RoleAdmin))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookie := tokenCookie(rec.Result())
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.Equal(t, []string{testSession}, ender.ended)
}

func TestLoginRefusesAdminUnlessUnverifiedAdminLoginEnabled(t *testing.T) {
	cfg := authConfig()
	cfg.FeatureFlags.UnverifiedAdminLogin = false
	h := Login(cfg, directory(), newCarts(), logger.Nop())

	rec := serve(h, withIdentity(formRequest(http.MethodPost, "/login", url.Values{"email": {"admin@gmail.com"}, "password": {"secreto"}}), ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "acceso de administrador está deshabilitado")
	assert.Nil(t, tokenCookie(rec.Result()))

	rec = serve(h, withIdentity(formRequest(http.MethodPost, "/login", url.Values{"email": {"ana@gmail.com"}, "password": {"secreto"}}), ""))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotNil(t, tokenCookie(rec.Result()))
}

func registration(overrides url.Values) url.Values {
	values := url.Values{
		"nombre":          {"Juan Pérez"},
		"email":           {"Juan.Perez@gmail.com"},
		"password":        {"secreto1"},
		"confirmPassword": {"secreto1"},
	}
	for k, v := range overrides {
		values[k] = v
	}
	return values
}

func TestRegisterCreatesCustomerAndSignsIn(t *testing.T) {
	accounts := &fakeAccounts{fakeUsers: directory()}
	roles := fakeRoles{{ID: 1, Name: "Admin"}, {ID: 2, Name: "Usuario"}}
	h := Register(authConfig(), accounts, roles, newCarts(), logger.Nop())

	values := registration(url.Values{"next": {"/admin"}})
	resp := serve(h, withIdentity(formRequest(http.MethodPost, "/register", values), "")).Result()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	require.Len(t, accounts.created, 1)
	created := accounts.created[0]
	assert.Equal(t, "Juan Pérez", created.Name)
	assert.Equal(t, "juan.perez@gmail.com", created.Email)
	assert.Equal(t, catalog.RoleUser, created.Role)
	assert.Equal(t, int64(2), created.RoleID)
	ok, err := security.VerifyPassword("secreto1", created.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	cookie := tokenCookie(resp)
	require.NotNil(t, cookie)
	claims, err := auth.ParseAccessToken(authConfig().JWT, cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, claims.Role)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestRegisterRejections(t *testing.T) {
	cases := []struct {
		name     string
		accounts *fakeAccounts
		values   url.Values
		status   int
		message  string
	}{
		{name: "missing name", values: registration(url.Values{"nombre": {""}}), status: http.StatusUnprocessableEntity, message: "Nombre completo is required"},
		{name: "short name", values: registration(url.Values{"nombre": {"Al"}}), status: http.StatusUnprocessableEntity, message: "al menos 3 caracteres"},
		{name: "not gmail", values: registration(url.Values{"email": {"juan@hotmail.com"}}), status: http.StatusUnprocessableEntity, message: "Solo se aceptan correos @gmail.com"},
		{name: "bad gmail", values: registration(url.Values{"email": {"ju!an@gmail.com"}}), status: http.StatusUnprocessableEntity, message: "Use el formato correo@gmail.com"},
		{name: "short password", values: registration(url.Values{"password": {"123"}, "confirmPassword": {"123"}}), status: http.StatusUnprocessableEntity, message: "al menos 6 caracteres"},
		{name: "missing confirmation", values: registration(url.Values{"confirmPassword": {""}}), status: http.StatusUnprocessableEntity, message: "Confirmar contraseña is required"},
		{name: "mismatch", values: registration(url.Values{"confirmPassword": {"otra-clave"}}), status: http.StatusUnprocessableEntity, message: "Las contraseñas no coinciden"},
		{name: "taken", values: registration(url.Values{"email": {"ana@gmail.com"}}), status: http.StatusConflict, message: "Este email ya está registrado"},
		{name: "directory down", accounts: &fakeAccounts{fakeUsers: fakeUsers{err: errors.New("down")}}, values: registration(nil), status: http.StatusBadGateway, message: "intenta nuevamente"},
		{name: "create fails", accounts: &fakeAccounts{fakeUsers: directory(), createErr: errors.New("boom")}, values: registration(nil), status: http.StatusBadGateway, message: "intenta nuevamente"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accounts := tc.accounts
			if accounts == nil {
				accounts = &fakeAccounts{fakeUsers: directory()}
			}
			h := Register(authConfig(), accounts, nil, newCarts(), logger.Nop())
			rec := serve(h, withIdentity(formRequest(http.MethodPost, "/register", tc.values), ""))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
			assert.NotContains(t, rec.Body.String(), "secreto1")
			assert.Nil(t, tokenCookie(rec.Result()))
		})
	}
}

func TestRegisterPageLinksToLogin(t *testing.T) {
	rec := serve(RegisterPage(newCarts(), logger.Nop()), withIdentity(formRequest(http.MethodGet, "/register?next=/cart", nil), ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="next" value="/cart"`)
	assert.Contains(t, rec.Body.String(), `href="/login"`)
}
