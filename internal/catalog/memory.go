package catalog

import (
	"context"
	"sync"
)

// MemoryRepository guarda o catálogo em memória. Escritas são serializadas
// pelo mutex; leituras devolvem cópias para impedir mutação por fora.
type MemoryRepository struct {
	mu       sync.RWMutex
	sectors  map[string]Sector
	services map[string]Service
	// ordem de inserção, para listagens estáveis
	sectorOrder  []string
	serviceOrder []string
}

// NewMemoryRepository cria repositório vazio.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sectors:  make(map[string]Sector),
		services: make(map[string]Service),
	}
}

func (r *MemoryRepository) ListSectors(ctx context.Context) ([]Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Sector, 0, len(r.sectorOrder))
	for _, id := range r.sectorOrder {
		if sector, ok := r.sectors[id]; ok {
			out = append(out, sector)
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetSector(ctx context.Context, id string) (Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sector, ok := r.sectors[id]
	if !ok {
		return Sector{}, ErrNotFound
	}
	return sector, nil
}

func (r *MemoryRepository) CreateSector(ctx context.Context, sector Sector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sectors[sector.ID]; !ok {
		r.sectorOrder = append(r.sectorOrder, sector.ID)
	}
	r.sectors[sector.ID] = sector
	return nil
}

func (r *MemoryRepository) UpdateSector(ctx context.Context, sector Sector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sectors[sector.ID]; !ok {
		return nil
	}
	r.sectors[sector.ID] = sector
	return nil
}

func (r *MemoryRepository) DeleteSector(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sectors, id)
	return nil
}

func (r *MemoryRepository) ListServices(ctx context.Context) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Service, 0, len(r.serviceOrder))
	for _, id := range r.serviceOrder {
		if service, ok := r.services[id]; ok {
			out = append(out, service)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListServicesBySector(ctx context.Context, sectorID string) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Service
	for _, id := range r.serviceOrder {
		if service, ok := r.services[id]; ok && service.SectorID == sectorID {
			out = append(out, service)
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetService(ctx context.Context, id string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, ok := r.services[id]
	if !ok {
		return Service{}, ErrNotFound
	}
	return service, nil
}

func (r *MemoryRepository) CreateService(ctx context.Context, service Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[service.ID]; !ok {
		r.serviceOrder = append(r.serviceOrder, service.ID)
	}
	r.services[service.ID] = service
	return nil
}

func (r *MemoryRepository) UpdateService(ctx context.Context, service Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[service.ID]; !ok {
		return nil
	}
	r.services[service.ID] = service
	return nil
}

func (r *MemoryRepository) DeleteService(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.services, id)
	return nil
}

func (r *MemoryRepository) ToggleServiceActive(ctx context.Context, id string) (Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	service, ok := r.services[id]
	if !ok {
		return Service{}, ErrNotFound
	}

	next := !service.IsActive()
	service.Active = &next
	r.services[id] = service
	return service, nil
}
