package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gestaozabele/ouvidoria/internal/identity"
	"github.com/gestaozabele/ouvidoria/internal/util"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	svc := NewService(repo).WithClock(func() time.Time { return fixedNow })
	return svc, repo
}

func superAdmin() identity.User {
	return identity.User{ID: "u1", Name: "Maria", JobTitle: "Gestora", Role: identity.RoleSuperAdmin}
}

func baseInput() CreateInput {
	return CreateInput{
		Name:        "João da Silva",
		Phone:       "75990001111",
		Description: "Buraco grande na rua principal",
		ServiceName: "Buraco na Via",
		SectorID:    "obras",
	}
}

func TestCreateInitialState(t *testing.T) {
	svc, _ := newEngine(t)

	rep, err := svc.Create(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if rep.Status != StatusPending {
		t.Fatalf("status inicial = %s, esperado PENDING", rep.Status)
	}
	if len(rep.History) != 1 {
		t.Fatalf("histórico inicial com %d entradas, esperado 1", len(rep.History))
	}
	if rep.History[0].Action != ActionCreated {
		t.Fatalf("ação inicial = %q, esperado %q", rep.History[0].Action, ActionCreated)
	}
	if rep.History[0].AdminName != "" || rep.History[0].AdminJobTitle != "" {
		t.Fatalf("entrada inicial não deve ter identidade de servidor: %+v", rep.History[0])
	}
	if rep.IsInternal {
		t.Fatal("submissão de cidadão marcada como interna")
	}
	if rep.ID == "" {
		t.Fatal("protocolo vazio")
	}
}

func TestCreateInternalCarriesActor(t *testing.T) {
	svc, _ := newEngine(t)

	actor := superAdmin()
	input := baseInput()
	input.ExplicitID = "PREF-1234"
	input.Actor = &actor

	rep, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rep.ID != "PREF-1234" {
		t.Fatalf("id = %q, esperado PREF-1234", rep.ID)
	}
	if !rep.IsInternal || rep.AuthorJobTitle != "Gestora" {
		t.Fatalf("marcação interna incorreta: internal=%v cargo=%q", rep.IsInternal, rep.AuthorJobTitle)
	}
}

func TestCreateMissingFields(t *testing.T) {
	svc, _ := newEngine(t)

	cases := []struct {
		name  string
		mutat func(*CreateInput)
	}{
		{"sem nome", func(in *CreateInput) { in.Name = " " }},
		{"sem descrição", func(in *CreateInput) { in.Description = "" }},
		{"sem serviço", func(in *CreateInput) { in.ServiceName = "" }},
		{"sem setor", func(in *CreateInput) { in.SectorID = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := baseInput()
			tc.mutat(&input)
			if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrValidation) {
				t.Fatalf("erro = %v, esperado ErrValidation", err)
			}
		})
	}
}

func TestCreateDuplicateExplicitID(t *testing.T) {
	svc, _ := newEngine(t)

	input := baseInput()
	input.ExplicitID = "PREF-5000"
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("primeira criação: %v", err)
	}
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("erro = %v, esperado ErrDuplicateID", err)
	}
}

// collidingRepo força colisões de protocolo para exercitar as novas tentativas.
type collidingRepo struct {
	*MemoryRepository
	failures int
	ids      []string
}

func (r *collidingRepo) InsertReport(ctx context.Context, rep Report) error {
	r.ids = append(r.ids, rep.ID)
	if r.failures > 0 {
		r.failures--
		return ErrDuplicateID
	}
	return r.MemoryRepository.InsertReport(ctx, rep)
}

func TestCreateRetriesOnCollision(t *testing.T) {
	repo := &collidingRepo{MemoryRepository: NewMemoryRepository(), failures: 2}
	svc := NewService(repo).WithClock(func() time.Time { return fixedNow })

	rep, err := svc.Create(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(repo.ids) != 3 {
		t.Fatalf("tentativas = %d, esperado 3", len(repo.ids))
	}
	if len(util.Digits(rep.ID)) != 4 {
		t.Fatalf("protocolo %q deveria seguir no espaço de 4 dígitos", rep.ID)
	}
}

func TestCreateWidensProtocolAfterRepeatedCollisions(t *testing.T) {
	repo := &collidingRepo{MemoryRepository: NewMemoryRepository(), failures: 5}
	svc := NewService(repo).WithClock(func() time.Time { return fixedNow })

	rep, err := svc.Create(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(util.Digits(rep.ID)) != 8 {
		t.Fatalf("protocolo %q deveria ter migrado para o espaço amplo", rep.ID)
	}
}

func TestTransitionFullLifecycle(t *testing.T) {
	svc, _ := newEngine(t)
	actor := superAdmin()
	ctx := context.Background()

	input := baseInput()
	input.ExplicitID = "PREF-1234"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}

	rep, err := svc.Transition(ctx, "PREF-1234", StatusInProgress, "Equipe a caminho", actor)
	if err != nil {
		t.Fatalf("transição para IN_PROGRESS: %v", err)
	}
	if rep.Status != StatusInProgress {
		t.Fatalf("status = %s, esperado IN_PROGRESS", rep.Status)
	}
	last := rep.History[len(rep.History)-1]
	if last.Action != ActionStarted {
		t.Fatalf("ação = %q, esperado %q", last.Action, ActionStarted)
	}
	if last.AdminName != "Maria" || last.AdminJobTitle != "Gestora" {
		t.Fatalf("identidade do servidor ausente: %+v", last)
	}
	if rep.AdminResponse != "Equipe a caminho" {
		t.Fatalf("admin_response = %q", rep.AdminResponse)
	}

	rep, err = svc.Transition(ctx, "PREF-1234", StatusResolved, "Serviço concluído", actor)
	if err != nil {
		t.Fatalf("transição para RESOLVED: %v", err)
	}
	if rep.History[len(rep.History)-1].Action != ActionCompleted {
		t.Fatalf("ação = %q, esperado %q", rep.History[len(rep.History)-1].Action, ActionCompleted)
	}

	rep, err = svc.Transition(ctx, "PREF-1234", StatusInProgress, "Reaberto para revisão", actor)
	if err != nil {
		t.Fatalf("reabertura: %v", err)
	}
	if rep.History[len(rep.History)-1].Action != ActionReopened {
		t.Fatalf("ação = %q, esperado %q", rep.History[len(rep.History)-1].Action, ActionReopened)
	}
	if len(rep.History) != 4 {
		t.Fatalf("histórico com %d entradas, esperado 4", len(rep.History))
	}
}

func TestTransitionNoteOnlyUpdate(t *testing.T) {
	svc, _ := newEngine(t)
	actor := superAdmin()
	ctx := context.Background()

	input := baseInput()
	input.ExplicitID = "PREF-2000"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}

	// mesmo status + nota vazia: no-op
	rep, err := svc.Transition(ctx, "PREF-2000", StatusPending, "   ", actor)
	if err != nil {
		t.Fatalf("no-op: %v", err)
	}
	if len(rep.History) != 1 {
		t.Fatalf("no-op anexou histórico: %d entradas", len(rep.History))
	}

	// mesmo status + nota: vira Update sem avançar o status
	rep, err = svc.Transition(ctx, "PREF-2000", StatusPending, "Aguardando material", actor)
	if err != nil {
		t.Fatalf("apenas-nota: %v", err)
	}
	if rep.Status != StatusPending {
		t.Fatalf("status mudou em atualização apenas-nota: %s", rep.Status)
	}
	last := rep.History[len(rep.History)-1]
	if last.Action != ActionUpdate || last.ResponseNote != "Aguardando material" {
		t.Fatalf("entrada apenas-nota incorreta: %+v", last)
	}
}

func TestTransitionClosedOnlyReopens(t *testing.T) {
	svc, _ := newEngine(t)
	actor := superAdmin()
	ctx := context.Background()

	input := baseInput()
	input.ExplicitID = "PREF-3000"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Transition(ctx, "PREF-3000", StatusRejected, "Fora de escopo", actor); err != nil {
		t.Fatalf("rejeição: %v", err)
	}

	if _, err := svc.Transition(ctx, "PREF-3000", StatusResolved, "", actor); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("erro = %v, esperado ErrInvalidTransition", err)
	}
	if _, err := svc.Transition(ctx, "PREF-3000", StatusPending, "volta", actor); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("erro = %v, esperado ErrInvalidTransition", err)
	}
}

func TestTransitionAuthorization(t *testing.T) {
	svc, _ := newEngine(t)
	ctx := context.Background()

	executive := identity.User{ID: "e1", Name: "Prefeito", Role: identity.RoleExecutive}
	adminObras := identity.User{ID: "a1", Name: "Carlos", Role: identity.RoleAdmin, PermittedSectors: []string{"obras"}}
	adminSaude := identity.User{ID: "a2", Name: "Ana", Role: identity.RoleAdmin, PermittedSectors: []string{"saude"}}

	input := baseInput()
	input.ExplicitID = "PREF-4000"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}

	// EXECUTIVE é somente leitura fora da reabertura
	if _, err := svc.Transition(ctx, "PREF-4000", StatusInProgress, "", executive); !errors.Is(err, ErrForbidden) {
		t.Fatalf("executive iniciar atendimento: erro = %v, esperado ErrForbidden", err)
	}

	// ADMIN fora do setor permitido
	if _, err := svc.Transition(ctx, "PREF-4000", StatusInProgress, "", adminSaude); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin fora de escopo: erro = %v, esperado ErrForbidden", err)
	}

	if _, err := svc.Transition(ctx, "PREF-4000", StatusInProgress, "", adminObras); err != nil {
		t.Fatalf("admin no escopo: %v", err)
	}
	if _, err := svc.Transition(ctx, "PREF-4000", StatusResolved, "feito", adminObras); err != nil {
		t.Fatalf("admin resolvendo: %v", err)
	}

	// reabertura é exclusiva de SUPER_ADMIN e EXECUTIVE
	if _, err := svc.Transition(ctx, "PREF-4000", StatusInProgress, "", adminObras); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin reabrindo: erro = %v, esperado ErrForbidden", err)
	}
	rep, err := svc.Transition(ctx, "PREF-4000", StatusInProgress, "", executive)
	if err != nil {
		t.Fatalf("executive reabrindo: %v", err)
	}
	if rep.History[len(rep.History)-1].Action != ActionReopened {
		t.Fatalf("ação = %q, esperado %q", rep.History[len(rep.History)-1].Action, ActionReopened)
	}
}

func TestTransitionUnknownProtocol(t *testing.T) {
	svc, _ := newEngine(t)

	if _, err := svc.Transition(context.Background(), "PREF-9999", StatusInProgress, "", superAdmin()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("erro = %v, esperado ErrNotFound", err)
	}
}

func TestTransitionInvalidStatus(t *testing.T) {
	svc, _ := newEngine(t)

	if _, err := svc.Transition(context.Background(), "PREF-1", Status("ARCHIVED"), "", superAdmin()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("erro = %v, esperado ErrInvalidTransition", err)
	}
}

func TestHistoryIsolatedFromCallers(t *testing.T) {
	svc, _ := newEngine(t)
	ctx := context.Background()

	input := baseInput()
	input.ExplicitID = "PREF-6000"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}

	rep, err := svc.Get(ctx, "PREF-6000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	rep.History[0].Action = "adulterado"
	rep.Status = StatusResolved

	again, err := svc.Get(ctx, "PREF-6000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.History[0].Action != ActionCreated || again.Status != StatusPending {
		t.Fatal("mutação externa vazou para o repositório")
	}
}
