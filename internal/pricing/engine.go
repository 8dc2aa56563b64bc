package pricing

import (
	"math"
	"strings"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
)

const (
	// GramsPerTroyOunce converts a per-ounce quote into a per-gram price.
	GramsPerTroyOunce = 31.103
	// DefaultCurrencyPeg converts the quote currency into the settlement currency.
	DefaultCurrencyPeg = 3.64
)

// QuoteSource is anything that can look up the latest quote for a symbol.
type QuoteSource interface {
	Quote(symbol string) (models.Quote, bool)
}

// PricedLineItem is a commodity row with its computed buy and sell prices.
type PricedLineItem struct {
	Item        models.CommodityLineItem `json:"item"`
	Symbol      string                   `json:"symbol"`
	DisplayName string                   `json:"displayName"`
	QuoteKnown  bool                     `json:"quoteKnown"`
	BuyPrice    float64                  `json:"buyPrice"`
	SellPrice   float64                  `json:"sellPrice"`
	BuyDisplay  string                   `json:"buyDisplay"`
	SellDisplay string                   `json:"sellDisplay"`
}

type Engine struct {
	peg float64
}

// NewEngine returns an engine using the given currency peg. A non-positive
// peg falls back to DefaultCurrencyPeg.
func NewEngine(peg float64) *Engine {
	if peg <= 0 || math.IsNaN(peg) || math.IsInf(peg, 0) {
		peg = DefaultCurrencyPeg
	}
	return &Engine{peg: peg}
}

func (e *Engine) Peg() float64 { return e.peg }

// PriceAll prices every item against the quotes in src. Items whose metal
// has no quote are priced from zero bid/ask, so the result always has one
// entry per input item.
func (e *Engine) PriceAll(src QuoteSource, items []models.CommodityLineItem) []PricedLineItem {
	out := make([]PricedLineItem, 0, len(items))
	for _, item := range items {
		out = append(out, e.Price(src, item))
	}
	return out
}

// Price computes one line item.
func (e *Engine) Price(src QuoteSource, item models.CommodityLineItem) PricedLineItem {
	symbol := SymbolFor(item.Metal)

	var bid, ask float64
	var known bool
	if symbol != "" && src != nil {
		var q models.Quote
		if q, known = src.Quote(symbol); known {
			bid, ask = q.Bid, q.Ask
		}
	}

	biddingValue := bid + finite(item.BuyPremium.Float64())
	askingValue := ask + finite(item.SellPremium.Float64())

	bidPerGram := biddingValue / GramsPerTroyOunce * e.peg
	askPerGram := askingValue / GramsPerTroyOunce * e.peg

	factor := ResolveUnitMultiplier(item.Weight) * ResolveQuantity(item.Unit.Float64()) * ResolvePurity(item.Purity.Float64())

	buy := bidPerGram*factor + finite(item.BuyCharge.Float64())
	sell := askPerGram*factor + finite(item.SellCharge.Float64())

	p := PricedLineItem{
		Item:        item,
		Symbol:      symbol,
		DisplayName: DisplayName(item.Metal),
		QuoteKnown:  known,
	}
	p.BuyPrice, p.BuyDisplay = Round(buy, item.Weight)
	p.SellPrice, p.SellDisplay = Round(sell, item.Weight)
	return p
}

// ResolveQuantity returns the unit count for a line item. Non-positive or
// non-finite quantities resolve to a single unit.
func ResolveQuantity(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 1
	}
	return q
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SymbolFor maps a configured metal category onto the feed symbol that
// prices it. Unknown categories return "".
func SymbolFor(metal string) string {
	switch strings.ToLower(strings.TrimSpace(metal)) {
	case "gold", "gold kilobar", "gold ten tola":
		return models.SymbolGold
	case "silver":
		return models.SymbolSilver
	}
	return ""
}

// DisplayName is the label shown on the board for a metal category.
func DisplayName(metal string) string {
	m := strings.TrimSpace(metal)
	switch strings.ToLower(m) {
	case "gold":
		return "GOLD"
	case "gold kilobar":
		return "KILO BAR"
	case "gold ten tola":
		return "TEN TOLA BAR"
	}
	if m == "" {
		return ""
	}
	return strings.ToUpper(m[:1]) + m[1:]
}

// ShowPurity reports whether the board prints the purity next to the name.
// Ten tola bars are sold by weight only.
func ShowPurity(metal string) bool {
	return strings.ToLower(strings.TrimSpace(metal)) != "gold ten tola"
}

// ApplySpreads returns a copy of items with each metal's bid/ask spread
// folded into the item's buy/sell premium.
func ApplySpreads(items []models.CommodityLineItem, spreads models.Spreads) []models.CommodityLineItem {
	out := make([]models.CommodityLineItem, len(items))
	for i, item := range items {
		bid, ask := spreads.For(SymbolFor(item.Metal))
		item.BuyPremium += models.Number(finite(bid))
		item.SellPremium += models.Number(finite(ask))
		out[i] = item
	}
	return out
}

// SpotQuote applies the metal spread to a raw quote for the spot panel.
func SpotQuote(q models.Quote, spreads models.Spreads) models.Quote {
	bid, ask := spreads.For(q.Symbol)
	q.Bid += finite(bid)
	q.Ask += finite(ask)
	return q
}
