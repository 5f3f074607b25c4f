package identity

import (
	"context"
	"sync"
)

// MemoryRepository guarda usuários em memória, com escritas serializadas.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
	order []string
}

// NewMemoryRepository cria repositório vazio.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) ListUsers(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.order))
	for _, id := range r.order {
		if user, ok := r.users[id]; ok {
			out = append(out, cloneUser(user))
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryRepository) GetUserByCPF(ctx context.Context, cpf string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.CPF == cpf {
			return cloneUser(user), nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		r.order = append(r.order, user.ID)
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *MemoryRepository) UpdateUser(ctx context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return nil
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *MemoryRepository) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

func (r *MemoryRepository) ToggleUserActive(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}

	next := !user.IsActive()
	user.Active = &next
	r.users[id] = user
	return cloneUser(user), nil
}

func cloneUser(u User) User {
	out := u
	out.PermittedSectors = append([]string(nil), u.PermittedSectors...)
	if u.Active != nil {
		v := *u.Active
		out.Active = &v
	}
	return out
}
