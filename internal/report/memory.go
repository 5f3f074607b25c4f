package report

import (
	"context"
	"sync"
)

// MemoryRepository guarda relatórios em memória. O mutex serializa escritas
// por protocolo (exigência de exclusão mútua do modelo multi-cliente) e as
// leituras devolvem cópias profundas para que o histórico só cresça por
// AppendTransition.
type MemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*Report
	order   []string
}

// NewMemoryRepository cria repositório vazio.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{reports: make(map[string]*Report)}
}

func (r *MemoryRepository) GetReport(ctx context.Context, id string) (Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.reports[id]
	if !ok {
		return Report{}, ErrNotFound
	}
	return cloneReport(*rep), nil
}

func (r *MemoryRepository) ListReports(ctx context.Context) ([]Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Report, 0, len(r.order))
	for _, id := range r.order {
		if rep, ok := r.reports[id]; ok {
			out = append(out, cloneReport(*rep))
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListReportsBySector(ctx context.Context, sectorID string) ([]Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Report
	for _, id := range r.order {
		if rep, ok := r.reports[id]; ok && rep.SectorID == sectorID {
			out = append(out, cloneReport(*rep))
		}
	}
	return out, nil
}

func (r *MemoryRepository) InsertReport(ctx context.Context, report Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[report.ID]; ok {
		return ErrDuplicateID
	}
	clone := cloneReport(report)
	r.reports[report.ID] = &clone
	r.order = append(r.order, report.ID)
	return nil
}

func (r *MemoryRepository) AppendTransition(ctx context.Context, id string, status Status, item HistoryItem, adminResponse *string) (Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.reports[id]
	if !ok {
		return Report{}, ErrNotFound
	}

	rep.Status = status
	rep.History = append(rep.History, item)
	if adminResponse != nil {
		rep.AdminResponse = *adminResponse
	}
	return cloneReport(*rep), nil
}

func cloneReport(rep Report) Report {
	out := rep
	out.History = append([]HistoryItem(nil), rep.History...)
	if rep.AIAnalysis != nil {
		analysis := *rep.AIAnalysis
		out.AIAnalysis = &analysis
	}
	if rep.Location.Lat != nil {
		v := *rep.Location.Lat
		out.Location.Lat = &v
	}
	if rep.Location.Lng != nil {
		v := *rep.Location.Lng
		out.Location.Lng = &v
	}
	return out
}
