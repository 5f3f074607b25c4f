package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/ouvidoria/internal/catalog"
)

// ListPublicSectors devolve os setores visíveis ao cidadão.
func (h *Handler) ListPublicSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.catalog.ListActiveSectors(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"sectors": sectors})
}

// ListPublicServices devolve os serviços ativos do setor. Serviço sem o flag
// configurado conta como ativo.
func (h *Handler) ListPublicServices(w http.ResponseWriter, r *http.Request) {
	sectorID := chi.URLParam(r, "id")

	services, err := h.catalog.ListActiveServicesBySector(r.Context(), sectorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"services": services})
}

// ListAdminSectors devolve os setores acessíveis ao usuário da sessão, com as
// estatísticas recalculadas na hora.
func (h *Handler) ListAdminSectors(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actingUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sectors, err := h.catalog.ListSectors(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	accessible := h.users.AccessibleSectors(actor, sectors)

	stats, err := h.reports.SectorStatistics(r.Context(), accessible)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"sectors": accessible,
		"stats":   stats,
	})
}

// CreateSector cria um setor (SUPER_ADMIN).
func (h *Handler) CreateSector(w http.ResponseWriter, r *http.Request) {
	var input catalog.SectorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	sector, err := h.catalog.AddSector(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"sector": sector})
}

// UpdateSector substitui o setor pelo id; id desconhecido é no-op.
func (h *Handler) UpdateSector(w http.ResponseWriter, r *http.Request) {
	var input catalog.SectorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	input.ID = chi.URLParam(r, "id")

	sector, err := h.catalog.EditSector(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"sector": sector})
}

// DeleteSector remove o setor, sem cascata sobre serviços ou relatórios.
func (h *Handler) DeleteSector(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteSector(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListAdminServices devolve todos os serviços, inclusive inativos.
func (h *Handler) ListAdminServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"services": services})
}

// CreateService cria um serviço vinculado a setor existente.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var input catalog.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	service, err := h.catalog.AddService(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"service": service})
}

// UpdateService substitui o serviço pelo id; id desconhecido é no-op.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var input catalog.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	input.ID = chi.URLParam(r, "id")

	service, err := h.catalog.EditService(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"service": service})
}

// DeleteService remove o serviço.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ToggleService inverte a visibilidade do serviço.
func (h *Handler) ToggleService(w http.ResponseWriter, r *http.Request) {
	service, err := h.catalog.ToggleServiceActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"service": service})
}
