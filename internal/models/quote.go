package models

import "time"

// Direction records how the bid moved relative to the previous tick.
type Direction string

const (
	DirectionUnchanged Direction = "unchanged"
	DirectionUp        Direction = "up"
	DirectionDown      Direction = "down"
)

// Quote is the latest merged market state for one symbol.
// Prices are quoted per troy ounce.
type Quote struct {
	Symbol       string    `json:"symbol"`
	Bid          float64   `json:"bid"`
	Ask          float64   `json:"ask"`
	Low          float64   `json:"low"`
	High         float64   `json:"high"`
	BidDirection Direction `json:"bidDirection"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Tick is one inbound update from the feed. A nil price field was not
// present in the message and must not overwrite the stored value.
type Tick struct {
	Symbol     string
	Bid        *float64
	Ask        *float64
	Low        *float64
	High       *float64
	ReceivedAt time.Time
}

// HasPrices reports whether the tick carries at least one price field.
func (t Tick) HasPrices() bool {
	return t.Bid != nil || t.Ask != nil || t.Low != nil || t.High != nil
}

// Float returns a pointer to v, for building ticks in code.
func Float(v float64) *float64 {
	return &v
}
