package repository_test

import (
	"context"
	"testing"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/AurifyAE/Honor-TV-View/internal/repository"
	"github.com/AurifyAE/Honor-TV-View/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotRateRepo(t *testing.T) {
	pool := testutil.SetupPool(t)
	repo := repository.NewSpotRateRepo(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))

	adminID := "test-" + t.Name()
	t.Cleanup(func() { _ = repo.Delete(context.Background(), adminID) })

	_, err := repo.Load(ctx, adminID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	cfg := &models.SpotRateConfig{
		AdminID: adminID,
		Spreads: models.Spreads{GoldBid: 0.5, SilverAsk: 0.02},
		Commodities: []models.CommodityLineItem{
			{Metal: "Gold", Weight: "GM", Unit: 10, Purity: 9999, BuyCharge: 2, SellCharge: 1},
			{Metal: "Gold Kilobar", Weight: "KG", Unit: 1, Purity: 995, SellPremium: 100},
		},
	}
	require.NoError(t, repo.Save(ctx, cfg))

	got, err := repo.Load(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	cfg.Commodities = cfg.Commodities[:1]
	cfg.Spreads.GoldBid = 1
	require.NoError(t, repo.Save(ctx, cfg))

	got, err = repo.Load(ctx, adminID)
	require.NoError(t, err)
	require.Len(t, got.Commodities, 1)
	assert.Equal(t, models.Number(1), got.Spreads.GoldBid)
}
