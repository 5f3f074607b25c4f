// Comando seed prepara o banco Postgres do portal: cria o schema, carrega o
// catálogo inicial de setores e serviços e garante um SUPER_ADMIN de partida.
// Idempotente: registros existentes são mantidos.
package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/db"
	"github.com/gestaozabele/ouvidoria/internal/util"
)

const schema = `
CREATE TABLE IF NOT EXISTS sectors (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    active       BOOLEAN NOT NULL DEFAULT TRUE,
    manager_name TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS services (
    id          TEXT PRIMARY KEY,
    sector_id   TEXT NOT NULL,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    active      BOOLEAN,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    nickname          TEXT NOT NULL,
    job_title         TEXT NOT NULL,
    phone             TEXT NOT NULL DEFAULT '',
    cpf               TEXT NOT NULL UNIQUE,
    password_hash     TEXT NOT NULL,
    role              TEXT NOT NULL,
    permitted_sectors TEXT[] NOT NULL DEFAULT '{}',
    avatar            TEXT NOT NULL DEFAULT '',
    active            BOOLEAN,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
    id               TEXT PRIMARY KEY,
    service_name     TEXT NOT NULL,
    sector_id        TEXT NOT NULL,
    name             TEXT NOT NULL,
    phone            TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL,
    lat              DOUBLE PRECISION,
    lng              DOUBLE PRECISION,
    address          TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL,
    ai_summary       TEXT,
    ai_urgency       TEXT,
    ai_category      TEXT,
    ai_is_clear      BOOLEAN,
    admin_response   TEXT NOT NULL DEFAULT '',
    is_internal      BOOLEAN NOT NULL DEFAULT FALSE,
    author_job_title TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS report_history (
    id              BIGSERIAL PRIMARY KEY,
    report_id       TEXT NOT NULL REFERENCES reports (id) ON DELETE CASCADE,
    date            TIMESTAMPTZ NOT NULL,
    action          TEXT NOT NULL,
    admin_name      TEXT NOT NULL DEFAULT '',
    admin_job_title TEXT NOT NULL DEFAULT '',
    response_note   TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_services_sector ON services (sector_id);
CREATE INDEX IF NOT EXISTS idx_reports_sector ON reports (sector_id);
CREATE INDEX IF NOT EXISTS idx_report_history_report ON report_history (report_id);
`

type seedSector struct {
	id, name, manager string
}

type seedService struct {
	id, sectorID, name, description string
}

var seedSectors = []seedSector{
	{"obras", "Obras e Infraestrutura", "Eng. Carlos"},
	{"saude", "Saúde", "Dra. Ana"},
	{"iluminacao", "Iluminação Pública", "Téc. Roberto"},
	{"transito", "Trânsito e Transporte", "Agente Silva"},
	{"meio_ambiente", "Meio Ambiente", "Biol. Fernanda"},
	{"fiscalizacao", "Fiscalização", "Inspetor Marcos"},
}

var seedServices = []seedService{
	{"obr_buraco", "obras", "Buraco na Via", "Informar buracos em ruas pavimentadas."},
	{"obr_ponte", "obras", "Manutenção de Ponte", "Ponte quebrada ou estrutura comprometida."},
	{"obr_escoria", "obras", "Solicitar Escória/Cascalho", "Melhoria em estradas de terra."},
	{"sau_dengue", "saude", "Foco de Dengue", "Denunciar água parada ou foco de mosquito."},
	{"sau_medicamento", "saude", "Falta de Medicamento", "Informar falta de remédio no posto."},
	{"lum_queimada", "iluminacao", "Lâmpada Queimada", "Poste com luz apagada à noite."},
	{"lum_acesa", "iluminacao", "Lâmpada Acesa de Dia", "Desperdício de energia."},
	{"tra_sinalizacao", "transito", "Placa Danificada", "Placas de pare ou sinalização caídas."},
	{"tra_estacionamento", "transito", "Estacionamento Irregular", "Veículo bloqueando passagem."},
	{"amb_arvore", "meio_ambiente", "Poda de Árvore", "Árvore em risco de queda ou atrapalhando a fiação."},
	{"amb_lixo", "meio_ambiente", "Descarte Irregular de Lixo", "Lixo jogado em terreno baldio."},
	{"fis_obra", "fiscalizacao", "Obra Irregular", "Construção sem alvará ou invadindo calçada."},
	{"fis_som", "fiscalizacao", "Poluição Sonora", "Barulho excessivo fora do horário permitido."},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão com o banco falhou")
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("criação do schema falhou")
	}
	log.Info().Msg("schema pronto")

	for _, s := range seedSectors {
		_, err := pool.Exec(ctx, `
            INSERT INTO sectors (id, name, active, manager_name)
            VALUES ($1, $2, TRUE, $3)
            ON CONFLICT (id) DO NOTHING
        `, s.id, s.name, s.manager)
		if err != nil {
			log.Fatal().Err(err).Str("setor", s.id).Msg("seed de setor falhou")
		}
	}

	for _, s := range seedServices {
		_, err := pool.Exec(ctx, `
            INSERT INTO services (id, sector_id, name, description)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (id) DO NOTHING
        `, s.id, s.sectorID, s.name, s.description)
		if err != nil {
			log.Fatal().Err(err).Str("servico", s.id).Msg("seed de serviço falhou")
		}
	}
	log.Info().Int("setores", len(seedSectors)).Int("servicos", len(seedServices)).Msg("catálogo carregado")

	adminCPF := util.NormalizeCPF(os.Getenv("SEED_ADMIN_CPF"))
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminCPF == "" || adminPassword == "" {
		log.Info().Msg("SEED_ADMIN_CPF/SEED_ADMIN_PASSWORD ausentes, pulando usuário inicial")
		return
	}

	hash, err := auth.Hash(adminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("hash da senha falhou")
	}

	tag, err := pool.Exec(ctx, `
        INSERT INTO users (id, name, nickname, job_title, cpf, password_hash, role)
        VALUES ($1, 'Administrador', 'Admin', 'Gestor do Portal', $2, $3, 'SUPER_ADMIN')
        ON CONFLICT (cpf) DO NOTHING
    `, util.NewID(), adminCPF, hash)
	if err != nil {
		log.Fatal().Err(err).Msg("seed do SUPER_ADMIN falhou")
	}
	if tag.RowsAffected() > 0 {
		log.Info().Msg("SUPER_ADMIN criado")
	} else {
		log.Info().Msg("SUPER_ADMIN já existia")
	}
}
