package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/identity"
	"github.com/gestaozabele/ouvidoria/internal/util"
)

// Repository provê acesso à coleção de relatórios. AppendTransition é a única
// primitiva de escrita pós-criação: status e histórico mudam juntos, nunca em
// separado.
type Repository interface {
	GetReport(ctx context.Context, id string) (Report, error)
	ListReports(ctx context.Context) ([]Report, error)
	ListReportsBySector(ctx context.Context, sectorID string) ([]Report, error)
	// InsertReport falha com ErrDuplicateID em colisão de protocolo.
	InsertReport(ctx context.Context, report Report) error
	// AppendTransition grava a entrada de histórico e o novo status de forma
	// atômica. adminResponse nulo preserva o valor anterior do campo.
	AppendTransition(ctx context.Context, id string, status Status, item HistoryItem, adminResponse *string) (Report, error)
}

// Service é o motor de ciclo de vida dos relatórios. Create e Transition são
// os dois únicos mutadores; nenhum outro caminho altera status ou histórico.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService cria o motor com relógio padrão.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock troca o relógio (testes).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateInput encapsula uma submissão de relatório.
type CreateInput struct {
	Name        string
	Phone       string
	Description string
	Location    Location
	ServiceName string
	SectorID    string
	AIAnalysis  *AIAnalysis
	// ExplicitID carrega o protocolo pré-gerado do fluxo interno, que exibe o
	// código na tela de sucesso antes da confirmação.
	ExplicitID string
	// Actor presente marca a solicitação como interna e registra o cargo.
	Actor *identity.User
}

// Create registra um relatório novo com status PENDING e exatamente uma
// entrada "Created" no histórico.
func (s *Service) Create(ctx context.Context, input CreateInput) (Report, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return Report{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := util.RequireString(input.Description, "descrição"); err != nil {
		return Report{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := util.RequireString(input.ServiceName, "serviço"); err != nil {
		return Report{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := util.RequireString(input.SectorID, "setor"); err != nil {
		return Report{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	now := s.now()
	rep := Report{
		ServiceName: strings.TrimSpace(input.ServiceName),
		SectorID:    strings.TrimSpace(input.SectorID),
		Name:        strings.TrimSpace(input.Name),
		Phone:       strings.TrimSpace(input.Phone),
		Description: strings.TrimSpace(input.Description),
		Location:    input.Location,
		Status:      StatusPending,
		CreatedAt:   now,
		AIAnalysis:  input.AIAnalysis,
		History:     []HistoryItem{{Date: now, Action: ActionCreated}},
	}
	if input.Actor != nil {
		rep.IsInternal = true
		rep.AuthorJobTitle = input.Actor.JobTitle
	}

	if input.ExplicitID != "" {
		rep.ID = strings.TrimSpace(input.ExplicitID)
		if err := s.repo.InsertReport(ctx, rep); err != nil {
			return Report{}, err
		}
		return rep, nil
	}

	// O espaço PREF-#### é curto; em colisão, sorteia de novo e por fim amplia
	// o espaço numérico.
	for attempt := 0; ; attempt++ {
		if attempt < 5 {
			rep.ID = util.NewProtocolID()
		} else {
			rep.ID = util.NewWideProtocolID()
		}
		err := s.repo.InsertReport(ctx, rep)
		if err == nil {
			return rep, nil
		}
		if !errors.Is(err, ErrDuplicateID) {
			return Report{}, err
		}
		log.Warn().Str("protocolo", rep.ID).Msg("colisão de protocolo, gerando outro")
	}
}

// Get busca relatório por protocolo.
func (s *Service) Get(ctx context.Context, id string) (Report, error) {
	return s.repo.GetReport(ctx, id)
}

// Transition aplica uma mudança de status solicitada por um servidor.
// O rótulo da ação é sintetizado da comparação status atual × solicitado.
// Solicitar o status vigente vira atualização apenas-nota: com nota vazia a
// chamada é no-op (nada é anexado); com nota, anexa "Update" sem avançar o
// relatório.
func (s *Service) Transition(ctx context.Context, id string, requested Status, note string, actor identity.User) (Report, error) {
	if !requested.Valid() {
		return Report{}, ErrInvalidTransition
	}

	rep, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return Report{}, err
	}

	if err := authorizeTransition(actor, rep, requested); err != nil {
		return Report{}, err
	}

	note = strings.TrimSpace(note)
	if requested == rep.Status && note == "" {
		// apenas-nota sem nota: no-op
		return rep, nil
	}

	if rep.Status.Closed() && requested != rep.Status && requested != StatusInProgress {
		return Report{}, ErrInvalidTransition
	}

	item := HistoryItem{
		Date:          s.now(),
		Action:        actionLabel(rep.Status, requested),
		AdminName:     actor.Name,
		AdminJobTitle: actor.JobTitle,
		ResponseNote:  note,
	}

	var adminResponse *string
	if note != "" {
		adminResponse = &note
	}

	updated, err := s.repo.AppendTransition(ctx, id, requested, item, adminResponse)
	if err != nil {
		return Report{}, err
	}

	log.Info().Str("protocolo", id).Str("de", string(rep.Status)).
		Str("para", string(requested)).Str("acao", item.Action).Msg("transição aplicada")
	return updated, nil
}

// authorizeTransition concentra as regras de papel sobre transições.
// EXECUTIVE só possui a reabertura; ADMIN não reabre e só atua nos setores
// permitidos; SUPER_ADMIN não tem restrição.
func authorizeTransition(actor identity.User, rep Report, requested Status) error {
	reopen := rep.Status.Closed() && requested == StatusInProgress

	switch actor.Role {
	case identity.RoleSuperAdmin:
		return nil
	case identity.RoleExecutive:
		if !reopen {
			return ErrForbidden
		}
		return nil
	case identity.RoleAdmin:
		if !actor.CanAccessSector(rep.SectorID) {
			return ErrForbidden
		}
		if reopen {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// actionLabel deriva o rótulo semântico da transição.
func actionLabel(from, to Status) string {
	if from == to {
		return ActionUpdate
	}
	switch to {
	case StatusInProgress:
		if from.Closed() {
			return ActionReopened
		}
		return ActionStarted
	case StatusResolved:
		return ActionCompleted
	case StatusRejected:
		return ActionRejected
	case StatusPending:
		// rollback raro, mantido por segurança
		return ActionPending
	}
	return ActionUpdate
}
