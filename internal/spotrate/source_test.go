package spotrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
adminId: kiosk-7
spreads:
  goldBidSpread: 0.5
  goldAskSpread: "1"
commodities:
  - metal: Gold
    weight: GM
    unit: 1
    purity: 9999
    buyCharge: 2
    sellCharge: 1
  - metal: Gold Ten Tola
    weight: TTB
    unit: "1"
    purity: 999
    sellPremium: ~
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "kiosk-7", cfg.AdminID)
	require.Len(t, cfg.Commodities, 2)
	assert.Equal(t, models.Number(9999), cfg.Commodities[0].Purity)
	assert.Equal(t, models.Number(2), cfg.Commodities[0].BuyCharge)
	assert.Equal(t, "TTB", cfg.Commodities[1].Weight)
	assert.Equal(t, models.Number(1), cfg.Commodities[1].Unit)
	assert.Equal(t, models.Number(0), cfg.Commodities[1].SellPremium)

	bid, ask := cfg.Spreads.For(models.SymbolGold)
	assert.Equal(t, 0.5, bid)
	assert.Equal(t, 1.0, ask)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte("adminId: x\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("commodities:\n  - {metal: Gold, purity: abc}\n"))
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commodities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commodities:\n  - {metal: Silver, weight: KG, unit: 1, purity: 999}\n"), 0o644))

	var src Source = NewFileSource(path)
	cfg, err := src.Load(context.Background(), "fallback-admin")
	require.NoError(t, err)
	assert.Equal(t, "fallback-admin", cfg.AdminID)
	assert.Equal(t, "Silver", cfg.Commodities[0].Metal)

	_, err = NewFileSource(filepath.Join(dir, "missing.yaml")).Load(context.Background(), "")
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	out, err := Marshal(cfg)
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
