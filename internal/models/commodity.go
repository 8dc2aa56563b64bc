package models

// Metal symbols carried by the feed.
const (
	SymbolGold   = "GOLD"
	SymbolSilver = "SILVER"
)

// CommodityLineItem is one retail product row configured by the admin.
// Field names follow the admin API payload.
type CommodityLineItem struct {
	Metal       string `json:"metal" yaml:"metal"`
	Weight      string `json:"weight" yaml:"weight"` // GM, KG, TTB, TOLA, OZ
	Unit        Number `json:"unit" yaml:"unit"`
	Purity      Number `json:"purity" yaml:"purity"`
	BuyCharge   Number `json:"buyCharge" yaml:"buyCharge"`
	SellCharge  Number `json:"sellCharge" yaml:"sellCharge"`
	BuyPremium  Number `json:"buyPremium" yaml:"buyPremium"`
	SellPremium Number `json:"sellPremium" yaml:"sellPremium"`
}

// Spreads are category-level adjustments added to bid/ask before the
// item-level premium.
type Spreads struct {
	GoldBid   Number `json:"goldBidSpread" yaml:"goldBidSpread"`
	GoldAsk   Number `json:"goldAskSpread" yaml:"goldAskSpread"`
	SilverBid Number `json:"silverBidSpread" yaml:"silverBidSpread"`
	SilverAsk Number `json:"silverAskSpread" yaml:"silverAskSpread"`
}

// For returns the bid and ask spread for a feed symbol.
func (s Spreads) For(symbol string) (bid, ask float64) {
	switch symbol {
	case SymbolGold:
		return s.GoldBid.Float64(), s.GoldAsk.Float64()
	case SymbolSilver:
		return s.SilverBid.Float64(), s.SilverAsk.Float64()
	}
	return 0, 0
}

// SpotRateConfig is everything the configuration collaborator supplies for
// one display session.
type SpotRateConfig struct {
	AdminID     string              `json:"adminId" yaml:"adminId"`
	Commodities []CommodityLineItem `json:"commodities" yaml:"commodities"`
	Spreads     Spreads             `json:"spreads" yaml:"spreads"`
}
