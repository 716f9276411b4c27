package entity

// Roles válidos para User, de menor a mayor privilegio.
const (
	RoleUser     = "USER"
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleAdmin    = "ADMIN"
)

// User actor que ejecuta movimientos. El alta de usuarios vive fuera de este servicio;
// aquí se leen el nombre para el log de auditoría y las credenciales para emitir tokens.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
}
