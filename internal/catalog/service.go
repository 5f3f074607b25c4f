package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/gestaozabele/ouvidoria/internal/util"
)

// Repository provê acesso às coleções de setores e serviços.
type Repository interface {
	ListSectors(ctx context.Context) ([]Sector, error)
	GetSector(ctx context.Context, id string) (Sector, error)
	CreateSector(ctx context.Context, sector Sector) error
	// UpdateSector substitui o setor pelo id; id ausente é no-op.
	UpdateSector(ctx context.Context, sector Sector) error
	// DeleteSector remove incondicionalmente, sem cascata sobre serviços ou
	// relatórios que referenciam o id.
	DeleteSector(ctx context.Context, id string) error

	ListServices(ctx context.Context) ([]Service, error)
	ListServicesBySector(ctx context.Context, sectorID string) ([]Service, error)
	GetService(ctx context.Context, id string) (Service, error)
	CreateService(ctx context.Context, service Service) error
	UpdateService(ctx context.Context, service Service) error
	DeleteService(ctx context.Context, id string) error
	// ToggleServiceActive inverte o flag tratando ausência como true, de modo
	// que o primeiro toggle de um serviço nunca configurado resulta em false.
	ToggleServiceActive(ctx context.Context, id string) (Service, error)
}

// Store reúne as regras do catálogo de setores e serviços.
type Store struct {
	repo Repository
}

// NewStore cria uma nova instância do catálogo.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// ListSectors devolve todos os setores, inclusive inativos.
func (s *Store) ListSectors(ctx context.Context) ([]Sector, error) {
	return s.repo.ListSectors(ctx)
}

// ListActiveSectors devolve apenas setores visíveis ao cidadão.
func (s *Store) ListActiveSectors(ctx context.Context) ([]Sector, error) {
	sectors, err := s.repo.ListSectors(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Sector, 0, len(sectors))
	for _, sector := range sectors {
		if sector.Active {
			active = append(active, sector)
		}
	}
	return active, nil
}

// GetSector busca setor por id.
func (s *Store) GetSector(ctx context.Context, id string) (Sector, error) {
	return s.repo.GetSector(ctx, id)
}

// AddSector cria um setor. O id pode vir do chamador (slugs como "obras")
// ou é gerado quando vazio.
func (s *Store) AddSector(ctx context.Context, input SectorInput) (Sector, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return Sector{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	sector := Sector{
		ID:          strings.TrimSpace(input.ID),
		Name:        strings.TrimSpace(input.Name),
		Active:      input.Active,
		ManagerName: strings.TrimSpace(input.ManagerName),
	}
	if sector.ID == "" {
		sector.ID = util.NewID()
	}

	if err := s.repo.CreateSector(ctx, sector); err != nil {
		return Sector{}, err
	}
	return sector, nil
}

// EditSector substitui o setor pelo id informado; id desconhecido é no-op.
func (s *Store) EditSector(ctx context.Context, input SectorInput) (Sector, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return Sector{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	sector := Sector{
		ID:          strings.TrimSpace(input.ID),
		Name:        strings.TrimSpace(input.Name),
		Active:      input.Active,
		ManagerName: strings.TrimSpace(input.ManagerName),
	}
	if err := s.repo.UpdateSector(ctx, sector); err != nil {
		return Sector{}, err
	}
	return sector, nil
}

// DeleteSector remove o setor sem verificação referencial. Serviços e
// relatórios existentes podem ficar com sectorId órfão; a camada de consulta
// tolera isso.
func (s *Store) DeleteSector(ctx context.Context, id string) error {
	return s.repo.DeleteSector(ctx, id)
}

// ListServices devolve todos os serviços.
func (s *Store) ListServices(ctx context.Context) ([]Service, error) {
	return s.repo.ListServices(ctx)
}

// ListActiveServicesBySector devolve os serviços visíveis ao cidadão no setor.
func (s *Store) ListActiveServicesBySector(ctx context.Context, sectorID string) ([]Service, error) {
	services, err := s.repo.ListServicesBySector(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	active := make([]Service, 0, len(services))
	for _, service := range services {
		if service.IsActive() {
			active = append(active, service)
		}
	}
	return active, nil
}

// ListServicesBySector devolve todos os serviços do setor.
func (s *Store) ListServicesBySector(ctx context.Context, sectorID string) ([]Service, error) {
	return s.repo.ListServicesBySector(ctx, sectorID)
}

// GetService busca serviço por id.
func (s *Store) GetService(ctx context.Context, id string) (Service, error) {
	return s.repo.GetService(ctx, id)
}

// AddService cria um serviço. O setor precisa existir no momento da criação;
// depois disso não há cascata de remoção.
func (s *Store) AddService(ctx context.Context, input ServiceInput) (Service, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return Service{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := util.RequireString(input.SectorID, "setor"); err != nil {
		return Service{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if _, err := s.repo.GetSector(ctx, input.SectorID); err != nil {
		return Service{}, fmt.Errorf("%w: setor inexistente", ErrValidation)
	}

	service := Service{
		ID:          strings.TrimSpace(input.ID),
		SectorID:    strings.TrimSpace(input.SectorID),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Active:      input.Active,
	}
	if service.ID == "" {
		service.ID = util.NewID()
	}

	if err := s.repo.CreateService(ctx, service); err != nil {
		return Service{}, err
	}
	return service, nil
}

// EditService substitui o serviço pelo id informado; id desconhecido é no-op.
func (s *Store) EditService(ctx context.Context, input ServiceInput) (Service, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return Service{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	service := Service{
		ID:          strings.TrimSpace(input.ID),
		SectorID:    strings.TrimSpace(input.SectorID),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Active:      input.Active,
	}
	if err := s.repo.UpdateService(ctx, service); err != nil {
		return Service{}, err
	}
	return service, nil
}

// DeleteService remove o serviço. Relatórios guardam o nome desnormalizado e
// não são afetados.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.repo.DeleteService(ctx, id)
}

// ToggleServiceActive inverte a visibilidade do serviço.
func (s *Store) ToggleServiceActive(ctx context.Context, id string) (Service, error) {
	return s.repo.ToggleServiceActive(ctx, id)
}
