package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persiste usuários no Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository cria instância do repositório durável.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, name, nickname, job_title, phone, cpf, password_hash, role, permitted_sectors, avatar, active`

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetUser(ctx context.Context, id string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresRepository) GetUserByCPF(ctx context.Context, cpf string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE cpf = $1`, cpf)
	return scanUser(row)
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user User) error {
	const query = `
        INSERT INTO users (id, name, nickname, job_title, phone, cpf, password_hash, role, permitted_sectors, avatar, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, user.Nickname, user.JobTitle, user.Phone, user.CPF,
		user.PasswordHash, string(user.Role), user.PermittedSectors, user.Avatar, user.Active,
	)
	return err
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user User) error {
	const query = `
        UPDATE users
        SET name = $2, nickname = $3, job_title = $4, phone = $5, cpf = $6,
            password_hash = $7, role = $8, permitted_sectors = $9, avatar = $10, active = $11
        WHERE id = $1
    `

	// id ausente afeta zero linhas e segue como no-op
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, user.Nickname, user.JobTitle, user.Phone, user.CPF,
		user.PasswordHash, string(user.Role), user.PermittedSectors, user.Avatar, user.Active,
	)
	return err
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) ToggleUserActive(ctx context.Context, id string) (User, error) {
	const query = `
        UPDATE users
        SET active = NOT COALESCE(active, TRUE)
        WHERE id = $1
        RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Nickname, &u.JobTitle, &u.Phone, &u.CPF,
		&u.PasswordHash, &role, &u.PermittedSectors, &u.Avatar, &u.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.Role = Role(role)
	if u.PermittedSectors == nil {
		u.PermittedSectors = []string{}
	}
	return u, nil
}
