package catalog

const (
	RoleUser  = "usuario"
	RoleAdmin = "admin"
)

type Address struct {
	Street  string
	Number  string
	Commune string
}

// User is a customer or administrator account.
type User struct {
	ID       int64
	Name     string
	Email    string
	RUT      string
	Phone    string
	Role     string
	RoleID   int64
	Address  *Address
	Active   bool
	Password string
}

type addressWire struct {
	Calle  string `json:"calle"`
	Numero string `json:"numero"`
	Comuna *ref   `json:"comuna"`
}

type userWire struct {
	ID             int64        `json:"id,omitempty"`
	RUT            string       `json:"rut"`
	Contacto       string       `json:"contacto"`
	Correo         string       `json:"correo"`
	ContrasenaHash string       `json:"contrasenaHash,omitempty"`
	Telefono       string       `json:"telefono"`
	Rol            *ref         `json:"rol"`
	Direccion      *addressWire `json:"direccion,omitempty"`
}

func userFromWire(w userWire) User {
	u := User{
		ID:     w.ID,
		Name:   w.Contacto,
		Email:  w.Correo,
		RUT:    w.RUT,
		Phone:  w.Telefono,
		Role:   w.Rol.name(RoleUser),
		RoleID: w.Rol.id(),
		Active: true,
	}
	if u.Name == "" {
		u.Name = "Usuario"
	}
	if w.Direccion != nil {
		u.Address = &Address{
			Street:  w.Direccion.Calle,
			Number:  w.Direccion.Numero,
			Commune: w.Direccion.Comuna.name(""),
		}
	}
	return u
}

func userToWire(u User) userWire {
	return userWire{
		RUT:            u.RUT,
		Contacto:       u.Name,
		Correo:         u.Email,
		ContrasenaHash: u.Password,
		Telefono:       u.Phone,
		Rol:            refTo(u.RoleID),
	}
}

// IsAdmin reports whether the account carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Users is the /usuarios collection.
type Users struct {
	*Service[User, userWire]
}

func NewUsers(client *Client) *Users {
	return &Users{Service: NewService(client, "/usuarios", userFromWire, userToWire)}
}
