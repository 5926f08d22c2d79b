package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResourcesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewResourcesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ResourcesRepo {
	return &ResourcesRepo{pool: pool, prom: prom}
}

func (r *ResourcesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const resourceColumns = `id, title, category, summary, funding_ask, valuation, tags, image_url, document_ref, created_at, updated_at`

func scanResource(row pgx.Row) (resource.Resource, error) {
	var res resource.Resource

	err := row.Scan(
		&res.ID,
		&res.Title,
		&res.Category,
		&res.Summary,
		&res.FundingAsk,
		&res.Valuation,
		&res.Tags,
		&res.ImageURL,
		&res.DocumentRef,
		&res.CreatedAt,
		&res.UpdatedAt,
	)

	return res, err
}

func (r *ResourcesRepo) Create(ctx context.Context, req resource.CreateResourceRequest) (resource.Resource, error) {
	now := time.Now().UTC()

	res := resource.Resource{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Category:   req.Category,
		Summary:    req.Summary,
		FundingAsk: req.FundingAsk,
		Valuation:  req.Valuation,
		Tags:       req.Tags,
		ImageURL:   req.ImageURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := r.observe("resources.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO resources (id, title, category, summary, funding_ask, valuation, tags, image_url, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			res.ID, res.Title, res.Category, res.Summary, res.FundingAsk, res.Valuation, res.Tags, res.ImageURL, res.CreatedAt, res.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return resource.Resource{}, err
	}

	return res, nil
}

func (r *ResourcesRepo) GetByID(ctx context.Context, id string) (resource.Resource, error) {
	var res resource.Resource
	var err error

	err = r.observe("resources.get_by_id", func() error {
		res, err = scanResource(r.pool.QueryRow(ctx,
			`SELECT `+resourceColumns+` FROM resources WHERE id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, err
	}

	return res, nil
}

func (r *ResourcesRepo) List(ctx context.Context) ([]resource.Resource, error) {
	var out []resource.Resource

	err := r.observe("resources.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+resourceColumns+` FROM resources ORDER BY created_at ASC, id ASC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			res, err := scanResource(rows)
			if err != nil {
				return err
			}
			out = append(out, res)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ResourcesRepo) Update(ctx context.Context, id string, req resource.UpdateResourceRequest) (resource.Resource, error) {
	var res resource.Resource
	var err error

	err = r.observe("resources.update", func() error {
		res, err = scanResource(r.pool.QueryRow(ctx,
			`UPDATE resources
			 SET title = $2, category = $3, summary = $4, funding_ask = $5,
			     valuation = $6, tags = $7, image_url = $8, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+resourceColumns,
			id, req.Title, req.Category, req.Summary, req.FundingAsk, req.Valuation, req.Tags, req.ImageURL,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, err
	}

	return res, nil
}

// AttachDocument sets document_ref; last write wins, concurrent admin
// edits are not reconciled at this scale.
func (r *ResourcesRepo) AttachDocument(ctx context.Context, id string, documentRef string) (resource.Resource, error) {
	var res resource.Resource
	var err error

	err = r.observe("resources.attach_document", func() error {
		res, err = scanResource(r.pool.QueryRow(ctx,
			`UPDATE resources
			 SET document_ref = $2, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+resourceColumns,
			id, documentRef,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, err
	}

	return res, nil
}

func (r *ResourcesRepo) Delete(ctx context.Context, id string) error {
	err := r.observe("resources.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return resource.ErrNotFound
		}
		return nil
	})

	return err
}
