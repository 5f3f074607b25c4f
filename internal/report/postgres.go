package report

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/ouvidoria/internal/db"
)

// PostgresRepository persiste relatórios e histórico no Postgres.
// As escritas de transição rodam em transação para manter status e histórico
// em passo único.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository cria instância do repositório durável.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `id, service_name, sector_id, name, phone, description,
        lat, lng, address, status, created_at,
        ai_summary, ai_urgency, ai_category, ai_is_clear,
        admin_response, is_internal, author_job_title`

func (r *PostgresRepository) GetReport(ctx context.Context, id string) (Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	rep, err := scanReport(row)
	if err != nil {
		return Report{}, err
	}

	history, err := r.loadHistory(ctx, []string{id})
	if err != nil {
		return Report{}, err
	}
	rep.History = history[id]
	return rep, nil
}

func (r *PostgresRepository) ListReports(ctx context.Context) ([]Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at ASC`)
}

func (r *PostgresRepository) ListReportsBySector(ctx context.Context, sectorID string) ([]Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports WHERE sector_id = $1 ORDER BY created_at ASC`, sectorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Report, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		reports []Report
		ids     []string
	)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
		ids = append(ids, rep.ID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	history, err := r.loadHistory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		reports[i].History = history[reports[i].ID]
	}
	return reports, nil
}

func (r *PostgresRepository) loadHistory(ctx context.Context, ids []string) (map[string][]HistoryItem, error) {
	out := make(map[string][]HistoryItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const query = `
        SELECT report_id, date, action, admin_name, admin_job_title, response_note
        FROM report_history
        WHERE report_id = ANY($1)
        ORDER BY id ASC
    `

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reportID string
			item     HistoryItem
		)
		if err := rows.Scan(&reportID, &item.Date, &item.Action, &item.AdminName, &item.AdminJobTitle, &item.ResponseNote); err != nil {
			return nil, err
		}
		out[reportID] = append(out[reportID], item)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) InsertReport(ctx context.Context, report Report) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const insertReport = `
            INSERT INTO reports (id, service_name, sector_id, name, phone, description,
                lat, lng, address, status, created_at,
                ai_summary, ai_urgency, ai_category, ai_is_clear,
                admin_response, is_internal, author_job_title)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        `

		var aiSummary, aiUrgency, aiCategory *string
		var aiIsClear *bool
		if report.AIAnalysis != nil {
			aiSummary = &report.AIAnalysis.Summary
			aiUrgency = &report.AIAnalysis.Urgency
			aiCategory = &report.AIAnalysis.Category
			aiIsClear = &report.AIAnalysis.IsClear
		}

		if _, err := tx.Exec(ctx, insertReport,
			report.ID, report.ServiceName, report.SectorID, report.Name, report.Phone, report.Description,
			report.Location.Lat, report.Location.Lng, report.Location.Address, string(report.Status), report.CreatedAt,
			aiSummary, aiUrgency, aiCategory, aiIsClear,
			report.AdminResponse, report.IsInternal, report.AuthorJobTitle,
		); err != nil {
			var pgErr *pgconn.PgError
			// 23505 = unique_violation
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateID
			}
			return err
		}

		const insertHistory = `
            INSERT INTO report_history (report_id, date, action, admin_name, admin_job_title, response_note)
            VALUES ($1, $2, $3, $4, $5, $6)
        `

		for _, item := range report.History {
			if _, err := tx.Exec(ctx, insertHistory,
				report.ID, item.Date, item.Action, item.AdminName, item.AdminJobTitle, item.ResponseNote,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepository) AppendTransition(ctx context.Context, id string, status Status, item HistoryItem, adminResponse *string) (Report, error) {
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const update = `
            UPDATE reports
            SET status = $2, admin_response = COALESCE($3, admin_response)
            WHERE id = $1
        `

		tag, err := tx.Exec(ctx, update, id, string(status), adminResponse)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		const insertHistory = `
            INSERT INTO report_history (report_id, date, action, admin_name, admin_job_title, response_note)
            VALUES ($1, $2, $3, $4, $5, $6)
        `

		_, err = tx.Exec(ctx, insertHistory, id, item.Date, item.Action, item.AdminName, item.AdminJobTitle, item.ResponseNote)
		return err
	})
	if err != nil {
		return Report{}, err
	}

	return r.GetReport(ctx, id)
}

func scanReport(row pgx.Row) (Report, error) {
	var (
		rep        Report
		status     string
		aiSummary  *string
		aiUrgency  *string
		aiCategory *string
		aiIsClear  *bool
	)
	if err := row.Scan(&rep.ID, &rep.ServiceName, &rep.SectorID, &rep.Name, &rep.Phone, &rep.Description,
		&rep.Location.Lat, &rep.Location.Lng, &rep.Location.Address, &status, &rep.CreatedAt,
		&aiSummary, &aiUrgency, &aiCategory, &aiIsClear,
		&rep.AdminResponse, &rep.IsInternal, &rep.AuthorJobTitle); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	rep.Status = Status(status)
	if aiSummary != nil {
		rep.AIAnalysis = &AIAnalysis{
			Summary:  *aiSummary,
			Urgency:  derefString(aiUrgency),
			Category: derefString(aiCategory),
			IsClear:  aiIsClear != nil && *aiIsClear,
		}
	}
	return rep, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
