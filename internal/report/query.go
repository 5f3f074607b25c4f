package report

import (
	"context"
	"sort"
	"strconv"

	"github.com/gestaozabele/ouvidoria/internal/catalog"
	"github.com/gestaozabele/ouvidoria/internal/util"
)

// FilterAll desliga o filtro de status nas listagens.
const FilterAll = "ALL"

// SectorStats agrega contagens de um setor. Sempre recalculado na leitura;
// nunca há cache entre mutações.
type SectorStats struct {
	SectorID   string `json:"sector_id"`
	Name       string `json:"name"`
	Total      int    `json:"total"`
	Open       int    `json:"open"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"in_progress"`
	Resolved   int    `json:"resolved"`
}

// SectorStatistics calcula as estatísticas dos setores acessíveis.
// Setores órfãos (id removido do catálogo) simplesmente não aparecem, sem
// quebrar a agregação.
func (s *Service) SectorStatistics(ctx context.Context, sectors []catalog.Sector) ([]SectorStats, error) {
	reports, err := s.repo.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return computeStats(sectors, reports), nil
}

func computeStats(sectors []catalog.Sector, reports []Report) []SectorStats {
	bySector := make(map[string][]Report, len(sectors))
	for _, rep := range reports {
		bySector[rep.SectorID] = append(bySector[rep.SectorID], rep)
	}

	stats := make([]SectorStats, 0, len(sectors))
	for _, sector := range sectors {
		st := SectorStats{SectorID: sector.ID, Name: sector.Name}
		for _, rep := range bySector[sector.ID] {
			st.Total++
			switch rep.Status {
			case StatusPending:
				st.Pending++
				st.Open++
			case StatusInProgress:
				st.InProgress++
				st.Open++
			case StatusResolved:
				st.Resolved++
			}
		}
		stats = append(stats, st)
	}
	return stats
}

// FilteredReports lista os relatórios do setor, opcionalmente filtrados por
// status, ordenados pela porção numérica crescente do protocolo. A ordenação
// lexicográfica seria errada assim que os protocolos passam de um grupo de
// dígitos (PREF-9 vem antes de PREF-10).
func (s *Service) FilteredReports(ctx context.Context, sectorID, statusFilter string) ([]Report, error) {
	reports, err := s.repo.ListReportsBySector(ctx, sectorID)
	if err != nil {
		return nil, err
	}

	if statusFilter != "" && statusFilter != FilterAll {
		filtered := reports[:0]
		for _, rep := range reports {
			if rep.Status == Status(statusFilter) {
				filtered = append(filtered, rep)
			}
		}
		reports = filtered
	}

	SortByProtocol(reports)
	return reports, nil
}

// SortByProtocol ordena in-place pela porção numérica do protocolo.
func SortByProtocol(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return protocolNumber(reports[i].ID) < protocolNumber(reports[j].ID)
	})
}

// protocolNumber extrai os dígitos do protocolo; sem dígitos vale 0.
func protocolNumber(id string) int {
	n, err := strconv.Atoi(util.Digits(id))
	if err != nil {
		return 0
	}
	return n
}
