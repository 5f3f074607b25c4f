package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/ouvidoria/internal/auth"
)

// ErrTokenNotFound indica hash de refresh desconhecido ou já consumido.
var ErrTokenNotFound = errors.New("refresh token não encontrado")

// TokenStore guarda o estado dos refresh tokens pelo hash.
type TokenStore interface {
	Save(ctx context.Context, hash, userID string, ttl time.Duration) error
	// Consume devolve o usuário dono do hash e o revoga no mesmo passo.
	Consume(ctx context.Context, hash string) (string, error)
	Revoke(ctx context.Context, hash string) error
}

// RedisTokenStore guarda refresh tokens no Redis com expiração nativa.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore cria o store sobre o cliente informado.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Save(ctx context.Context, hash, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, auth.RefreshKey(hash), userID, ttl).Err()
}

func (s *RedisTokenStore) Consume(ctx context.Context, hash string) (string, error) {
	key := auth.RefreshKey(hash)
	userID, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return userID, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, hash string) error {
	return s.client.Del(ctx, auth.RefreshKey(hash)).Err()
}

// MemoryTokenStore guarda refresh tokens em memória, para a implantação
// memory e para testes.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

type memoryToken struct {
	userID string
	expiry time.Time
}

// NewMemoryTokenStore cria store vazio.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]memoryToken)}
}

func (s *MemoryTokenStore) Save(ctx context.Context, hash, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[hash] = memoryToken{userID: userID, expiry: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Consume(ctx context.Context, hash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[hash]
	if !ok || time.Now().After(token.expiry) {
		delete(s.tokens, hash)
		return "", ErrTokenNotFound
	}
	delete(s.tokens, hash)
	return token.userID, nil
}

func (s *MemoryTokenStore) Revoke(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, hash)
	return nil
}
