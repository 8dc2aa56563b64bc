package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
)

// Event names on the quote stream.
const (
	EventRequestData = "request-data"
	EventMarketData  = "market-data"
	EventError       = "error"
)

var (
	ErrMalformedTick = errors.New("malformed tick")
	ErrUnknownEvent  = errors.New("unknown event")
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type tickPayload struct {
	Symbol string     `json:"symbol"`
	Bid    *wirePrice `json:"bid"`
	Ask    *wirePrice `json:"ask"`
	Low    *wirePrice `json:"low"`
	High   *wirePrice `json:"high"`
}

// wirePrice is a price field on the stream. Unlike models.Number an empty
// string is an error: a blank price must not be read as zero. null leaves
// the pointer nil, which means the field is absent.
type wirePrice struct {
	models.Number
}

func (p *wirePrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return errors.New("empty price")
		}
	}
	return p.Number.UnmarshalJSON(data)
}

// SubscribeMessage builds the request-data frame for symbols.
func SubscribeMessage(symbols []string) Envelope {
	data, _ := json.Marshal(symbols)
	return Envelope{Event: EventRequestData, Data: data}
}

// ParseTick decodes one market-data frame. Frames for other events return
// ErrUnknownEvent; frames that cannot become a tick return ErrMalformedTick.
func ParseTick(raw []byte, receivedAt time.Time) (models.Tick, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return models.Tick{}, fmt.Errorf("%w: %v", ErrMalformedTick, err)
	}
	if env.Event != EventMarketData {
		return models.Tick{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}

	var p tickPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return models.Tick{}, fmt.Errorf("%w: %v", ErrMalformedTick, err)
	}

	symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
	if symbol == "" {
		return models.Tick{}, fmt.Errorf("%w: missing symbol", ErrMalformedTick)
	}

	t := models.Tick{
		Symbol:     symbol,
		Bid:        numberPtr(p.Bid),
		Ask:        numberPtr(p.Ask),
		Low:        numberPtr(p.Low),
		High:       numberPtr(p.High),
		ReceivedAt: receivedAt,
	}
	if !t.HasPrices() {
		return models.Tick{}, fmt.Errorf("%w: %s has no prices", ErrMalformedTick, symbol)
	}
	return t, nil
}

func numberPtr(p *wirePrice) *float64 {
	if p == nil {
		return nil
	}
	v := p.Float64()
	return &v
}
