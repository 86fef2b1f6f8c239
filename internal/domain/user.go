package domain

// User is the identity produced by the external credential collaborator.
// The core only consumes the id, address and active/verified flags.
type User struct {
	ID              int64
	Email           string
	Nombre          string
	Apellido        string
	Activo          bool
	EmailVerificado bool
}
