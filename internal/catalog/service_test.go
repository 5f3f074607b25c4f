package catalog

import (
	"context"
	"errors"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewMemoryRepository())
}

func TestAddSectorKeepsCallerID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	sector, err := store.AddSector(ctx, SectorInput{ID: "obras", Name: "Obras e Infraestrutura", Active: true, ManagerName: "Eng. Carlos"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sector.ID != "obras" {
		t.Fatalf("id = %q, esperado obras", sector.ID)
	}

	generated, err := store.AddSector(ctx, SectorInput{Name: "Saúde", Active: true})
	if err != nil {
		t.Fatalf("add sem id: %v", err)
	}
	if generated.ID == "" {
		t.Fatal("id não foi gerado")
	}
}

func TestAddSectorRequiresName(t *testing.T) {
	store := newStore(t)

	if _, err := store.AddSector(context.Background(), SectorInput{Name: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("erro = %v, esperado ErrValidation", err)
	}
}

func TestListActiveSectorsHidesInactive(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	mustAddSector(t, store, SectorInput{ID: "obras", Name: "Obras", Active: true})
	mustAddSector(t, store, SectorInput{ID: "saude", Name: "Saúde", Active: false})

	active, err := store.ListActiveSectors(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].ID != "obras" {
		t.Fatalf("ativos = %+v", active)
	}

	all, err := store.ListSectors(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("listagem administrativa deveria incluir inativos: %d", len(all))
	}
}

func TestEditSectorMissingIDIsNoOp(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.EditSector(ctx, SectorInput{ID: "fantasma", Name: "Nome Novo"}); err != nil {
		t.Fatalf("edição de id ausente deveria ser silenciosa: %v", err)
	}

	sectors, err := store.ListSectors(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sectors) != 0 {
		t.Fatalf("edição de id ausente criou registro: %+v", sectors)
	}
}

func TestDeleteSectorWithoutCascade(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	mustAddSector(t, store, SectorInput{ID: "obras", Name: "Obras", Active: true})
	if _, err := store.AddService(ctx, ServiceInput{ID: "obr_buraco", SectorID: "obras", Name: "Buraco na Via"}); err != nil {
		t.Fatalf("add service: %v", err)
	}

	if err := store.DeleteSector(ctx, "obras"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// delete repetido também é silencioso
	if err := store.DeleteSector(ctx, "obras"); err != nil {
		t.Fatalf("delete repetido: %v", err)
	}

	services, err := store.ListServicesBySector(ctx, "obras")
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(services) != 1 {
		t.Fatalf("serviço órfão deveria permanecer: %+v", services)
	}
}

func TestAddServiceRequiresExistingSector(t *testing.T) {
	store := newStore(t)

	if _, err := store.AddService(context.Background(), ServiceInput{SectorID: "inexistente", Name: "Qualquer"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("erro = %v, esperado ErrValidation", err)
	}
}

func TestToggleServiceTreatsAbsentAsActive(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	mustAddSector(t, store, SectorInput{ID: "obras", Name: "Obras", Active: true})
	service, err := store.AddService(ctx, ServiceInput{ID: "obr_buraco", SectorID: "obras", Name: "Buraco na Via"})
	if err != nil {
		t.Fatalf("add service: %v", err)
	}
	if !service.IsActive() {
		t.Fatal("serviço sem flag deveria contar como ativo")
	}

	toggled, err := store.ToggleServiceActive(ctx, "obr_buraco")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Active == nil || *toggled.Active {
		t.Fatalf("primeiro toggle deveria desativar: %+v", toggled.Active)
	}

	toggled, err = store.ToggleServiceActive(ctx, "obr_buraco")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsActive() {
		t.Fatal("segundo toggle deveria reativar")
	}
}

func TestListActiveServicesBySector(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	mustAddSector(t, store, SectorInput{ID: "obras", Name: "Obras", Active: true})
	inactive := false
	if _, err := store.AddService(ctx, ServiceInput{ID: "a", SectorID: "obras", Name: "Visível"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.AddService(ctx, ServiceInput{ID: "b", SectorID: "obras", Name: "Oculto", Active: &inactive}); err != nil {
		t.Fatalf("add: %v", err)
	}

	services, err := store.ListActiveServicesBySector(ctx, "obras")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(services) != 1 || services[0].ID != "a" {
		t.Fatalf("visíveis = %+v", services)
	}
}

func mustAddSector(t *testing.T, store *Store, input SectorInput) {
	t.Helper()
	if _, err := store.AddSector(context.Background(), input); err != nil {
		t.Fatalf("add sector %s: %v", input.ID, err)
	}
}
