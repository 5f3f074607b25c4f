package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/ouvidoria/internal/catalog"
	"github.com/gestaozabele/ouvidoria/internal/identity"
	"github.com/gestaozabele/ouvidoria/internal/report"
)

type reportPayload struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Description string          `json:"description"`
	ServiceID   string          `json:"service_id"`
	ServiceName string          `json:"service_name"`
	SectorID    string          `json:"sector_id"`
	Location    report.Location `json:"location"`
}

// resolveService preenche nome do serviço e setor a partir do service_id,
// quando informado. O relatório guarda os dois desnormalizados.
func (h *Handler) resolveService(r *http.Request, payload *reportPayload) error {
	if strings.TrimSpace(payload.ServiceID) == "" {
		return nil
	}

	svc, err := h.catalog.GetService(r.Context(), payload.ServiceID)
	if err != nil {
		return catalog.ErrValidation
	}
	if !svc.IsActive() {
		return catalog.ErrValidation
	}

	payload.ServiceName = svc.Name
	payload.SectorID = svc.SectorID
	return nil
}

// enrichLocation resolve endereço legível quando só vieram coordenadas.
// Melhor esforço: falha vira a string de coordenadas e a submissão segue.
func (h *Handler) enrichLocation(r *http.Request, loc report.Location) report.Location {
	if loc.Lat != nil && loc.Lng != nil && strings.TrimSpace(loc.Address) == "" {
		loc.Address = h.geocoder.Reverse(r.Context(), *loc.Lat, *loc.Lng)
	}
	return loc
}

// CreatePublicReport registra uma solicitação de cidadão, com classificação
// por IA e geocodificação reversa em melhor esforço.
func (h *Handler) CreatePublicReport(w http.ResponseWriter, r *http.Request) {
	var payload reportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.resolveService(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "serviço inexistente ou indisponível", nil)
		return
	}

	analysis := h.analyzer.Analyze(r.Context(), payload.Description, payload.ServiceName)

	rep, err := h.reports.Create(r.Context(), report.CreateInput{
		Name:        payload.Name,
		Phone:       payload.Phone,
		Description: payload.Description,
		Location:    h.enrichLocation(r, payload.Location),
		ServiceName: payload.ServiceName,
		SectorID:    payload.SectorID,
		AIAnalysis:  &analysis,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"report": rep})
}

// GetPublicReport permite ao cidadão consultar o protocolo.
func (h *Handler) GetPublicReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"report": rep})
}

// ListAdminReports lista os relatórios do setor, filtrados por status e
// ordenados pela porção numérica do protocolo.
func (h *Handler) ListAdminReports(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actingUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sectorID := strings.TrimSpace(r.URL.Query().Get("sector"))
	if sectorID == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "sector é obrigatório", nil)
		return
	}
	if !actor.CanAccessSector(sectorID) {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "setor fora do escopo do usuário", nil)
		return
	}

	statusFilter := strings.TrimSpace(r.URL.Query().Get("status"))
	reports, err := h.reports.FilteredReports(r.Context(), sectorID, statusFilter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// CreateInternalReport registra uma solicitação aberta por servidor, com
// protocolo opcionalmente pré-gerado pelo fluxo interno.
func (h *Handler) CreateInternalReport(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actingUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.users.CanMutateReports(actor) {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "papel sem permissão de escrita", nil)
		return
	}

	var payload struct {
		reportPayload
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.resolveService(r, &payload.reportPayload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "serviço inexistente ou indisponível", nil)
		return
	}
	if actor.Role == identity.RoleAdmin && !actor.CanAccessSector(payload.SectorID) {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "setor fora do escopo do usuário", nil)
		return
	}

	analysis := h.analyzer.Analyze(r.Context(), payload.Description, payload.ServiceName)

	rep, err := h.reports.Create(r.Context(), report.CreateInput{
		Name:        payload.Name,
		Phone:       payload.Phone,
		Description: payload.Description,
		Location:    h.enrichLocation(r, payload.Location),
		ServiceName: payload.ServiceName,
		SectorID:    payload.SectorID,
		AIAnalysis:  &analysis,
		ExplicitID:  payload.ID,
		Actor:       &actor,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"report": rep})
}

// TransitionReport aplica mudança de status solicitada por um servidor.
func (h *Handler) TransitionReport(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actingUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var payload struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	rep, err := h.reports.Transition(r.Context(), chi.URLParam(r, "id"), report.Status(payload.Status), payload.Note, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"report": rep})
}
