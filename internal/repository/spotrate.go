package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no configuration exists for an admin.
var ErrNotFound = errors.New("spot rate config not found")

const spotRateSchema = `
CREATE TABLE IF NOT EXISTS spot_rate_config (
	admin_id          TEXT PRIMARY KEY,
	gold_bid_spread   DOUBLE PRECISION NOT NULL DEFAULT 0,
	gold_ask_spread   DOUBLE PRECISION NOT NULL DEFAULT 0,
	silver_bid_spread DOUBLE PRECISION NOT NULL DEFAULT 0,
	silver_ask_spread DOUBLE PRECISION NOT NULL DEFAULT 0,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS commodities (
	id           SERIAL PRIMARY KEY,
	admin_id     TEXT NOT NULL REFERENCES spot_rate_config(admin_id) ON DELETE CASCADE,
	position     INT NOT NULL,
	metal        TEXT NOT NULL,
	weight       TEXT NOT NULL DEFAULT 'GM',
	unit         DOUBLE PRECISION NOT NULL DEFAULT 1,
	purity       DOUBLE PRECISION NOT NULL DEFAULT 0,
	buy_charge   DOUBLE PRECISION NOT NULL DEFAULT 0,
	sell_charge  DOUBLE PRECISION NOT NULL DEFAULT 0,
	buy_premium  DOUBLE PRECISION NOT NULL DEFAULT 0,
	sell_premium DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS commodities_admin_position ON commodities (admin_id, position);
`

type SpotRateRepo struct {
	pool *pgxpool.Pool
}

func NewSpotRateRepo(pool *pgxpool.Pool) *SpotRateRepo {
	return &SpotRateRepo{pool: pool}
}

func (r *SpotRateRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, spotRateSchema); err != nil {
		return fmt.Errorf("ensure spot rate schema: %w", err)
	}
	return nil
}

// Load returns the spreads and ordered commodity rows for adminID.
func (r *SpotRateRepo) Load(ctx context.Context, adminID string) (*models.SpotRateConfig, error) {
	cfg := &models.SpotRateConfig{AdminID: adminID}

	var gb, ga, sb, sa float64
	err := r.pool.QueryRow(ctx,
		`SELECT gold_bid_spread, gold_ask_spread, silver_bid_spread, silver_ask_spread
		 FROM spot_rate_config WHERE admin_id = $1`,
		adminID,
	).Scan(&gb, &ga, &sb, &sa)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load spreads: %w", err)
	}
	cfg.Spreads = models.Spreads{
		GoldBid:   models.Number(gb),
		GoldAsk:   models.Number(ga),
		SilverBid: models.Number(sb),
		SilverAsk: models.Number(sa),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT metal, weight, unit, purity, buy_charge, sell_charge, buy_premium, sell_premium
		 FROM commodities WHERE admin_id = $1 ORDER BY position ASC`,
		adminID,
	)
	if err != nil {
		return nil, fmt.Errorf("load commodities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item                     models.CommodityLineItem
			unit, purity             float64
			buyC, sellC, buyP, sellP float64
		)
		if err := rows.Scan(&item.Metal, &item.Weight, &unit, &purity, &buyC, &sellC, &buyP, &sellP); err != nil {
			return nil, fmt.Errorf("scan commodity: %w", err)
		}
		item.Unit = models.Number(unit)
		item.Purity = models.Number(purity)
		item.BuyCharge = models.Number(buyC)
		item.SellCharge = models.Number(sellC)
		item.BuyPremium = models.Number(buyP)
		item.SellPremium = models.Number(sellP)
		cfg.Commodities = append(cfg.Commodities, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commodities: %w", err)
	}

	return cfg, nil
}

// Save replaces the stored configuration for cfg.AdminID.
func (r *SpotRateRepo) Save(ctx context.Context, cfg *models.SpotRateConfig) error {
	if cfg.AdminID == "" {
		return errors.New("admin id is required")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	s := cfg.Spreads
	_, err = tx.Exec(ctx,
		`INSERT INTO spot_rate_config
		 (admin_id, gold_bid_spread, gold_ask_spread, silver_bid_spread, silver_ask_spread, updated_at)
		 VALUES ($1,$2,$3,$4,$5,NOW())
		 ON CONFLICT (admin_id) DO UPDATE SET
		   gold_bid_spread = EXCLUDED.gold_bid_spread,
		   gold_ask_spread = EXCLUDED.gold_ask_spread,
		   silver_bid_spread = EXCLUDED.silver_bid_spread,
		   silver_ask_spread = EXCLUDED.silver_ask_spread,
		   updated_at = NOW()`,
		cfg.AdminID, s.GoldBid.Float64(), s.GoldAsk.Float64(), s.SilverBid.Float64(), s.SilverAsk.Float64(),
	)
	if err != nil {
		return fmt.Errorf("upsert spreads: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM commodities WHERE admin_id = $1`, cfg.AdminID); err != nil {
		return fmt.Errorf("clear commodities: %w", err)
	}

	batch := &pgx.Batch{}
	for i, item := range cfg.Commodities {
		batch.Queue(
			`INSERT INTO commodities
			 (admin_id, position, metal, weight, unit, purity, buy_charge, sell_charge, buy_premium, sell_premium)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			cfg.AdminID, i, item.Metal, item.Weight, item.Unit.Float64(), item.Purity.Float64(),
			item.BuyCharge.Float64(), item.SellCharge.Float64(),
			item.BuyPremium.Float64(), item.SellPremium.Float64(),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert commodities: %w", err)
	}

	return tx.Commit(ctx)
}

// Delete removes the configuration and its commodity rows.
func (r *SpotRateRepo) Delete(ctx context.Context, adminID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM spot_rate_config WHERE admin_id = $1`, adminID)
	return err
}
