package catalog

import "errors"

var (
	// ErrNotFound é retornado em leituras de setor/serviço inexistente.
	// Edição e remoção por id ausente são tratadas como no-op, não como erro.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrValidation indica campo obrigatório ausente ou vínculo inválido.
	ErrValidation = errors.New("dados inválidos")
)

// Sector representa uma secretaria/setor municipal que agrupa serviços.
// Setores inativos saem da listagem do cidadão mas continuam válidos para
// protocolos históricos.
type Sector struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	ManagerName string `json:"manager_name,omitempty"`
}

// Service representa um tipo de solicitação que o cidadão pode abrir.
// Active nulo equivale a ativo (tri-estado por ausência, herdado do produto).
type Service struct {
	ID          string `json:"id"`
	SectorID    string `json:"sector_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active,omitempty"`
}

// IsActive resolve o tri-estado: ausência de valor conta como ativo.
func (s Service) IsActive() bool {
	return s.Active == nil || *s.Active
}

// SectorInput encapsula criação/edição de setor.
type SectorInput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	ManagerName string `json:"manager_name"`
}

// ServiceInput encapsula criação/edição de serviço.
type ServiceInput struct {
	ID          string `json:"id"`
	SectorID    string `json:"sector_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}
