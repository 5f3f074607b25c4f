package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/catalog"
	"github.com/gestaozabele/ouvidoria/internal/util"
)

// Repository provê acesso à coleção de usuários.
type Repository interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (User, error)
	// GetUserByCPF busca pelo CPF já normalizado (apenas dígitos).
	GetUserByCPF(ctx context.Context, cpf string) (User, error)
	CreateUser(ctx context.Context, user User) error
	// UpdateUser substitui o usuário pelo id; id ausente é no-op.
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error
	ToggleUserActive(ctx context.Context, id string) (User, error)
}

// Service concentra autenticação e a superfície única de autorização.
// Toda checagem de papel dos handlers passa por aqui, nunca por comparações
// espalhadas.
type Service struct {
	repo Repository
}

// NewService cria nova instância.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate valida CPF e senha. O CPF é normalizado dos dois lados, então
// "111.222.333-44" e "11122233344" são equivalentes. Conta desativada com
// credenciais corretas devolve ErrAccountDisabled, distinto de
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, cpf, password string) (User, error) {
	digits := util.NormalizeCPF(cpf)
	if digits == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByCPF(ctx, digits)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Msg("login: cpf não encontrado")
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	ok, err := auth.Verify(password, user.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return User{}, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return User{}, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return User{}, ErrAccountDisabled
	}

	return user, nil
}

// AccessibleSectors resolve os setores visíveis para o usuário.
// SUPER_ADMIN e EXECUTIVE recebem o conjunto completo; ADMIN recebe o
// subconjunto dos setores permitidos.
func (s *Service) AccessibleSectors(user User, sectors []catalog.Sector) []catalog.Sector {
	if user.Role != RoleAdmin {
		return sectors
	}

	permitted := make(map[string]struct{}, len(user.PermittedSectors))
	for _, id := range user.PermittedSectors {
		permitted[id] = struct{}{}
	}

	out := make([]catalog.Sector, 0, len(sectors))
	for _, sector := range sectors {
		if _, ok := permitted[sector.ID]; ok {
			out = append(out, sector)
		}
	}
	return out
}

// CanMutateReports indica se o papel pode alterar relatórios em geral.
// EXECUTIVE é somente leitura, exceto a reabertura, tratada pelo motor de
// transições como exceção pontual.
func (s *Service) CanMutateReports(user User) bool {
	return user.Role == RoleSuperAdmin || user.Role == RoleAdmin
}

// ListUsers devolve todos os usuários.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser busca usuário por id.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// AddUser valida e cria um usuário, guardando a senha como hash.
func (s *Service) AddUser(ctx context.Context, input UserInput) (User, error) {
	user, err := s.buildUser(input, true)
	if err != nil {
		return User{}, err
	}
	if user.ID == "" {
		user.ID = util.NewID()
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// EditUser valida e substitui o usuário pelo id; id desconhecido é no-op.
// Senha vazia preserva o hash atual. Se o editado for o usuário da sessão,
// o chamador recarrega o perfil — os handlers sempre releem por id.
func (s *Service) EditUser(ctx context.Context, input UserInput) (User, error) {
	requirePassword := strings.TrimSpace(input.Password) != ""
	user, err := s.buildUser(input, requirePassword)
	if err != nil {
		return User{}, err
	}
	if user.ID == "" {
		return User{}, fmt.Errorf("%w: id obrigatório", ErrValidation)
	}

	if !requirePassword {
		current, err := s.repo.GetUser(ctx, user.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return User{}, nil
			}
			return User{}, err
		}
		user.PasswordHash = current.PasswordHash
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// DeleteUser remove o usuário; id desconhecido é no-op.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// ToggleUserActive inverte o status do usuário. Usuário desativado não
// autentica mais.
func (s *Service) ToggleUserActive(ctx context.Context, id string) (User, error) {
	return s.repo.ToggleUserActive(ctx, id)
}

func (s *Service) buildUser(input UserInput, requirePassword bool) (User, error) {
	for _, check := range []struct {
		value, field string
	}{
		{input.Name, "nome"},
		{input.Nickname, "apelido"},
		{input.JobTitle, "cargo"},
		{input.CPF, "cpf"},
	} {
		if err := util.RequireString(check.value, check.field); err != nil {
			return User{}, fmt.Errorf("%w: %s", ErrValidation, err)
		}
	}
	if requirePassword {
		if err := util.RequireString(input.Password, "senha"); err != nil {
			return User{}, fmt.Errorf("%w: %s", ErrValidation, err)
		}
	}
	if !input.Role.Valid() {
		return User{}, fmt.Errorf("%w: papel desconhecido", ErrValidation)
	}
	if input.Role == RoleAdmin && len(input.PermittedSectors) == 0 {
		return User{}, fmt.Errorf("%w: ADMIN exige ao menos um setor permitido", ErrValidation)
	}

	user := User{
		ID:       strings.TrimSpace(input.ID),
		Name:     strings.TrimSpace(input.Name),
		Nickname: strings.TrimSpace(input.Nickname),
		JobTitle: strings.TrimSpace(input.JobTitle),
		Phone:    strings.TrimSpace(input.Phone),
		CPF:      util.NormalizeCPF(input.CPF),
		Role:     input.Role,
		Avatar:   strings.TrimSpace(input.Avatar),
		Active:   input.Active,
	}

	// PermittedSectors só tem significado para ADMIN; os demais papéis ficam
	// com o campo vazio em vez de carregar lixo.
	if input.Role == RoleAdmin {
		user.PermittedSectors = append([]string(nil), input.PermittedSectors...)
	} else {
		user.PermittedSectors = []string{}
	}

	if requirePassword {
		hash, err := auth.Hash(input.Password)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = hash
	}

	return user, nil
}
