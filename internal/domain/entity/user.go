package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleCajero   = "cajero"
	RoleConsulta = "consulta"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un operador del sistema de cobros.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, cajero, consulta
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si el rol es uno de los soportados.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCajero, RoleConsulta:
		return true
	}
	return false
}
