package postgres

import (
	"context"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/lead"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadsRepo is append-only: leads are inserted and read, never updated or
// deleted.
type LeadsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewLeadsRepo(pool *pgxpool.Pool, prom *observability.Prom) *LeadsRepo {
	return &LeadsRepo{pool: pool, prom: prom}
}

func (r *LeadsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *LeadsRepo) Append(ctx context.Context, l lead.Lead) error {
	return r.observe("leads.append", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO leads (id, name, email, phone, company, resource_id, resource_title, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			l.ID, l.Name, l.Email, l.Phone, l.Company, l.ResourceID, l.ResourceTitle, l.CreatedAt,
		)
		return err
	})
}

// List returns leads newest first; id breaks createdAt ties for a stable
// order.
func (r *LeadsRepo) List(ctx context.Context) ([]lead.Lead, error) {
	var out []lead.Lead

	err := r.observe("leads.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, email, phone, company, resource_id, resource_title, created_at
			 FROM leads
			 ORDER BY created_at DESC, id DESC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var l lead.Lead
			err = rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.ResourceID, &l.ResourceTitle, &l.CreatedAt)
			if err != nil {
				return err
			}
			out = append(out, l)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
