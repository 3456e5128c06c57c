package admin

import (
	"context"
	"strings"

	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/internal/form"
	"github.com/efarmaplus/storefront/internal/table"
	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
)

type roleLookups interface {
	Roles(ctx context.Context) []catalog.Lookup
}

// UsersConfig is the account management screen.
func UsersConfig(lookups roleLookups) Config[catalog.User] {
	return Config[catalog.User]{
		Name:    "users",
		Title:   "Gestión de Usuarios",
		Noun:    "Usuario",
		Columns: []string{"ID", "Nombre", "Email", "Rol", "RUT"},
		ID:      func(u catalog.User) int64 { return u.ID },
		Row: func(u catalog.User) table.Row {
			role := "👤 Usuario"
			if u.IsAdmin() {
				role = "👑 Admin"
			}
			rut := u.RUT
			if rut == "" {
				rut = "N/A"
			}
			return table.Row{u.ID, u.Name, u.Email, role, rut}
		},
		Options: func(ctx context.Context) (Options, error) {
			return Options{"rolId": lookupOptions(lookups.Roles(ctx))}, nil
		},
		Fields: func(opts Options) []form.Field {
			return []form.Field{
				form.Text{Base: form.Base{Name: "nombre", Label: "Nombre Completo", Required: true}},
				form.Email{Base: form.Base{Name: "email", Label: "Email", Required: true}},
				form.Text{Base: form.Base{Name: "rut", Label: "RUT", Placeholder: "12345678-9"}},
				form.Text{Base: form.Base{Name: "telefono", Label: "Teléfono", Placeholder: "+56 9 1234 5678"}},
				form.Select{Base: form.Base{Name: "rolId", Label: "Rol", Required: true}, Options: opts["rolId"]},
			}
		},
		Values: func(u catalog.User) form.Values {
			return form.Values{
				"nombre":   u.Name,
				"email":    u.Email,
				"rut":      u.RUT,
				"telefono": u.Phone,
				"rolId":    idString(u.RoleID),
			}
		},
		FromValues: func(v form.Values, u catalog.User) (catalog.User, error) {
			roleID, err := parseID(v.String("rolId"))
			if err != nil || roleID == 0 {
				return u, pkgerrors.New(pkgerrors.CodeValidation, "rol inválido")
			}
			u.Name = strings.TrimSpace(v.String("nombre"))
			u.Email = strings.TrimSpace(v.String("email"))
			u.RUT = strings.TrimSpace(v.String("rut"))
			u.Phone = strings.TrimSpace(v.String("telefono"))
			u.RoleID = roleID
			return u, nil
		},
	}
}
