package identity

import "errors"

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrValidation indica campo obrigatório ausente ou restrição de papel violada.
	ErrValidation = errors.New("dados inválidos")
	// ErrNotFound é retornado em leituras de usuário inexistente.
	ErrNotFound = errors.New("usuário não encontrado")
)

// Role é o papel do servidor no portal.
type Role string

const (
	// RoleSuperAdmin acessa todos os setores e administra usuários e catálogo.
	RoleSuperAdmin Role = "SUPER_ADMIN"
	// RoleAdmin atua apenas nos setores permitidos.
	RoleAdmin Role = "ADMIN"
	// RoleExecutive tem leitura total e somente a reabertura como mutação.
	RoleExecutive Role = "EXECUTIVE"
)

// Valid indica se o papel é reconhecido.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleExecutive:
		return true
	}
	return false
}

// User representa servidor do backoffice.
// PasswordHash guarda Argon2id; a senha em claro nunca é persistida.
type User struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Nickname         string   `json:"nickname"`
	JobTitle         string   `json:"job_title"`
	Phone            string   `json:"phone"`
	CPF              string   `json:"cpf"`
	PasswordHash     string   `json:"-"`
	Role             Role     `json:"role"`
	PermittedSectors []string `json:"permitted_sectors"`
	Avatar           string   `json:"avatar,omitempty"`
	Active           *bool    `json:"active,omitempty"`
}

// IsActive resolve o tri-estado: ausência de valor conta como ativo.
func (u User) IsActive() bool {
	return u.Active == nil || *u.Active
}

// CanAccessSector aplica a regra de escopo por papel. PermittedSectors só tem
// significado para ADMIN; os demais papéis ignoram o campo.
func (u User) CanAccessSector(sectorID string) bool {
	if u.Role != RoleAdmin {
		return true
	}
	for _, id := range u.PermittedSectors {
		if id == sectorID {
			return true
		}
	}
	return false
}

// UserInput encapsula criação/edição de usuário. Password chega em claro e é
// convertida em hash antes de persistir.
type UserInput struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Nickname         string   `json:"nickname"`
	JobTitle         string   `json:"job_title"`
	Phone            string   `json:"phone"`
	CPF              string   `json:"cpf"`
	Password         string   `json:"password"`
	Role             Role     `json:"role"`
	PermittedSectors []string `json:"permitted_sectors"`
	Avatar           string   `json:"avatar"`
	Active           *bool    `json:"active"`
}
