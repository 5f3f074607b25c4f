package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/ouvidoria/internal/identity"
)

// ListUsers devolve todos os usuários do backoffice.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// CreateUser cria um usuário do backoffice. A senha chega em claro e é
// persistida como hash.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input identity.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	user, err := h.users.AddUser(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// UpdateUser substitui o usuário pelo id; id desconhecido é no-op. Senha
// vazia preserva o hash atual.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var input identity.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	input.ID = chi.URLParam(r, "id")

	user, err := h.users.EditUser(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// DeleteUser remove o usuário; id desconhecido é no-op.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ToggleUser inverte o status do usuário. Usuário desativado perde o login
// mas mantém a sessão corrente até o access token expirar.
func (h *Handler) ToggleUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.ToggleUserActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}
