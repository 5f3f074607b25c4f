package report

import (
	"errors"
	"time"
)

var (
	// ErrNotFound é retornado quando o protocolo não existe. Diferente do
	// catálogo, transições sobre protocolo desconhecido falham de forma
	// explícita.
	ErrNotFound = errors.New("protocolo não encontrado")
	// ErrForbidden indica transição não autorizada para o papel do ator.
	ErrForbidden = errors.New("acesso negado")
	// ErrInvalidTransition indica mudança de status fora da tabela legal.
	ErrInvalidTransition = errors.New("transição inválida")
	// ErrDuplicateID indica colisão de protocolo na inserção.
	ErrDuplicateID = errors.New("protocolo já existente")
	// ErrValidation indica campo obrigatório ausente na submissão.
	ErrValidation = errors.New("dados inválidos")
)

// Status é o estado do relatório no ciclo de vida.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusRejected   Status = "REJECTED"
)

// Valid indica se o status é reconhecido.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Closed indica estado terminal (resolvido ou rejeitado).
func (s Status) Closed() bool {
	return s == StatusResolved || s == StatusRejected
}

// Rótulos semânticos do histórico. O rótulo é derivado da transição
// (status anterior × solicitado), nunca informado pelo chamador.
const (
	ActionCreated   = "Created"
	ActionStarted   = "Attendance Started"
	ActionCompleted = "Completed"
	ActionRejected  = "Rejected"
	ActionReopened  = "Reopened"
	ActionUpdate    = "Update"
	ActionPending   = "Pending"
)

// Níveis de urgência atribuídos pela classificação por IA.
const (
	UrgencyLow    = "Baixa"
	UrgencyMedium = "Média"
	UrgencyHigh   = "Alta"
)

// Location é a localização opcional informada na submissão.
type Location struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address,omitempty"`
}

// AIAnalysis é a anotação estruturada produzida uma única vez na criação.
type AIAnalysis struct {
	Summary  string `json:"summary"`
	Urgency  string `json:"urgency"`
	Category string `json:"category"`
	IsClear  bool   `json:"is_clear"`
}

// HistoryItem é uma entrada do razão de auditoria do relatório. A entrada
// inicial "Created" não tem identidade de servidor.
type HistoryItem struct {
	Date          time.Time `json:"date"`
	Action        string    `json:"action"`
	AdminName     string    `json:"admin_name,omitempty"`
	AdminJobTitle string    `json:"admin_job_title,omitempty"`
	ResponseNote  string    `json:"response_note,omitempty"`
}

// Report é uma solicitação registrada por cidadão ou servidor.
// History é append-only, em ordem cronológica de inserção; Status é sempre o
// estado codificado pela entrada mais recente — os dois nunca divergem.
type Report struct {
	ID             string        `json:"id"`
	ServiceName    string        `json:"service_name"`
	SectorID       string        `json:"sector_id"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone"`
	Description    string        `json:"description"`
	Location       Location      `json:"location"`
	Status         Status        `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	AIAnalysis     *AIAnalysis   `json:"ai_analysis,omitempty"`
	AdminResponse  string        `json:"admin_response,omitempty"`
	History        []HistoryItem `json:"history"`
	IsInternal     bool          `json:"is_internal,omitempty"`
	AuthorJobTitle string        `json:"author_job_title,omitempty"`
}
