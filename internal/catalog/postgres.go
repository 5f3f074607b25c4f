package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persiste o catálogo no Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository cria instância do repositório durável.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListSectors(ctx context.Context) ([]Sector, error) {
	const query = `
        SELECT id, name, active, manager_name
        FROM sectors
        ORDER BY created_at ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sectors []Sector
	for rows.Next() {
		sector, err := scanSector(rows)
		if err != nil {
			return nil, err
		}
		sectors = append(sectors, sector)
	}
	return sectors, rows.Err()
}

func (r *PostgresRepository) GetSector(ctx context.Context, id string) (Sector, error) {
	const query = `
        SELECT id, name, active, manager_name
        FROM sectors
        WHERE id = $1
    `

	return scanSector(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) CreateSector(ctx context.Context, sector Sector) error {
	const query = `
        INSERT INTO sectors (id, name, active, manager_name)
        VALUES ($1, $2, $3, $4)
    `

	_, err := r.pool.Exec(ctx, query, sector.ID, sector.Name, sector.Active, sector.ManagerName)
	return err
}

func (r *PostgresRepository) UpdateSector(ctx context.Context, sector Sector) error {
	const query = `
        UPDATE sectors
        SET name = $2, active = $3, manager_name = $4
        WHERE id = $1
    `

	// id ausente afeta zero linhas e segue como no-op
	_, err := r.pool.Exec(ctx, query, sector.ID, sector.Name, sector.Active, sector.ManagerName)
	return err
}

func (r *PostgresRepository) DeleteSector(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sectors WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) ListServices(ctx context.Context) ([]Service, error) {
	const query = `
        SELECT id, sector_id, name, description, active
        FROM services
        ORDER BY created_at ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}

func (r *PostgresRepository) ListServicesBySector(ctx context.Context, sectorID string) ([]Service, error) {
	const query = `
        SELECT id, sector_id, name, description, active
        FROM services
        WHERE sector_id = $1
        ORDER BY created_at ASC
    `

	rows, err := r.pool.Query(ctx, query, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}

func (r *PostgresRepository) GetService(ctx context.Context, id string) (Service, error) {
	const query = `
        SELECT id, sector_id, name, description, active
        FROM services
        WHERE id = $1
    `

	return scanService(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) CreateService(ctx context.Context, service Service) error {
	const query = `
        INSERT INTO services (id, sector_id, name, description, active)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := r.pool.Exec(ctx, query, service.ID, service.SectorID, service.Name, service.Description, service.Active)
	return err
}

func (r *PostgresRepository) UpdateService(ctx context.Context, service Service) error {
	const query = `
        UPDATE services
        SET sector_id = $2, name = $3, description = $4, active = $5
        WHERE id = $1
    `

	_, err := r.pool.Exec(ctx, query, service.ID, service.SectorID, service.Name, service.Description, service.Active)
	return err
}

func (r *PostgresRepository) DeleteService(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) ToggleServiceActive(ctx context.Context, id string) (Service, error) {
	const query = `
        UPDATE services
        SET active = NOT COALESCE(active, TRUE)
        WHERE id = $1
        RETURNING id, sector_id, name, description, active
    `

	return scanService(r.pool.QueryRow(ctx, query, id))
}

func scanSector(row pgx.Row) (Sector, error) {
	var s Sector
	if err := row.Scan(&s.ID, &s.Name, &s.Active, &s.ManagerName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sector{}, ErrNotFound
		}
		return Sector{}, err
	}
	return s, nil
}

func scanService(row pgx.Row) (Service, error) {
	var s Service
	if err := row.Scan(&s.ID, &s.SectorID, &s.Name, &s.Description, &s.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, ErrNotFound
		}
		return Service{}, err
	}
	return s, nil
}
