package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PricingRepository holds the single global markup applied to provider-quoted
// prices. The value is read per request-creation call, never cached in
// process.
type PricingRepository interface {
	Markup(ctx context.Context) (decimal.Decimal, error)
	Update(ctx context.Context, markup decimal.Decimal) error
}

type PGPricingRepository struct {
	db            *pgxpool.Pool
	defaultMarkup decimal.Decimal
}

func NewPricingRepository(db *pgxpool.Pool, defaultMarkup decimal.Decimal) PricingRepository {
	return &PGPricingRepository{db: db, defaultMarkup: defaultMarkup}
}

func (r *PGPricingRepository) Markup(ctx context.Context) (decimal.Decimal, error) {
	// numeric travels as text so no custom pgx codec is needed.
	var value string
	err := r.db.QueryRow(ctx, `SELECT markup::text FROM pricing_policy WHERE id=1`).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.defaultMarkup, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(value)
}

func (r *PGPricingRepository) Update(ctx context.Context, markup decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `INSERT INTO pricing_policy (id, markup) VALUES (1, $1::numeric)
		ON CONFLICT (id) DO UPDATE SET markup = EXCLUDED.markup`, markup.String())
	return err
}

var _ PricingRepository = (*PGPricingRepository)(nil)
