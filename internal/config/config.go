package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// StoreMemory mantém todas as coleções em memória (padrão do portal).
	StoreMemory = "memory"
	// StorePostgres persiste as coleções no Postgres.
	StorePostgres = "postgres"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	Store           string
	DBDSN           string
	RedisURL        string
	JWTSecret       string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	Gemini          GeminiConfig
	Geocoder        GeocoderConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// GeminiConfig configura o colaborador de classificação por IA.
// Com APIKey vazia o cliente fica desabilitado e o fallback fixo é usado.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeocoderConfig configura a geocodificação reversa (melhor esforço).
type GeocoderConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.Store = strings.ToLower(strings.TrimSpace(getEnv("STORE", StoreMemory)))
	switch cfg.Store {
	case StoreMemory, StorePostgres:
	default:
		return nil, errors.New("STORE deve ser memory ou postgres")
	}

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.Store == StorePostgres && cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório quando STORE=postgres")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTRefreshTTL = refreshTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	geminiTimeout, err := parseDurationEnv("GEMINI_TIMEOUT", 8*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Gemini = GeminiConfig{
		APIKey:  strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		Timeout: geminiTimeout,
	}

	geoTimeout, err := parseDurationEnv("GEOCODER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Geocoder = GeocoderConfig{
		BaseURL: getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		Timeout: geoTimeout,
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
