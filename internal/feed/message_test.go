package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/AurifyAE/Honor-TV-View/internal/quotes"
)

func TestParseTick_Full(t *testing.T) {
	now := time.Now()
	raw := `{"event":"market-data","data":{"symbol":"gold","bid":1900.5,"ask":"1905.25","low":1890,"high":1910,"marketStatus":"TRADEABLE"}}`

	tick, err := ParseTick([]byte(raw), now)
	require.NoError(t, err)
	assert.Equal(t, "GOLD", tick.Symbol)
	require.NotNil(t, tick.Bid)
	assert.Equal(t, 1900.5, *tick.Bid)
	require.NotNil(t, tick.Ask)
	assert.Equal(t, 1905.25, *tick.Ask)
	assert.Equal(t, 1890.0, *tick.Low)
	assert.Equal(t, 1910.0, *tick.High)
	assert.Equal(t, now, tick.ReceivedAt)
}

func TestParseTick_Partial(t *testing.T) {
	tick, err := ParseTick([]byte(`{"event":"market-data","data":{"symbol":"SILVER","bid":24.1}}`), time.Now())
	require.NoError(t, err)
	assert.NotNil(t, tick.Bid)
	assert.Nil(t, tick.Ask)
	assert.Nil(t, tick.Low)
	assert.Nil(t, tick.High)
}

func TestParseTick_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{{{`,
		"missing symbol":  `{"event":"market-data","data":{"bid":1900}}`,
		"blank symbol":    `{"event":"market-data","data":{"symbol":"  ","bid":1900}}`,
		"non-numeric bid": `{"event":"market-data","data":{"symbol":"GOLD","bid":"n/a"}}`,
		"no prices":       `{"event":"market-data","data":{"symbol":"GOLD"}}`,
		"empty bid":       `{"event":"market-data","data":{"symbol":"GOLD","bid":""}}`,
		"blank ask":       `{"event":"market-data","data":{"symbol":"GOLD","bid":1900,"ask":"  "}}`,
		"data not object": `{"event":"market-data","data":[1,2,3]}`,
	}
	for name, raw := range cases {
		_, err := ParseTick([]byte(raw), time.Now())
		assert.ErrorIs(t, err, ErrMalformedTick, name)
	}
}

func TestParseTick_EmptyPriceKeepsStoredQuote(t *testing.T) {
	store := quotes.NewStore()
	require.True(t, store.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1900), Ask: models.Float(1905)}))

	_, err := ParseTick([]byte(`{"event":"market-data","data":{"symbol":"GOLD","bid":""}}`), time.Now())
	require.ErrorIs(t, err, ErrMalformedTick)

	q, ok := store.Quote("GOLD")
	require.True(t, ok)
	assert.Equal(t, 1900.0, q.Bid)
	assert.Equal(t, models.DirectionUnchanged, q.BidDirection)
}

func TestParseTick_NullPriceIsAbsent(t *testing.T) {
	tick, err := ParseTick([]byte(`{"event":"market-data","data":{"symbol":"GOLD","bid":1901,"ask":null}}`), time.Now())
	require.NoError(t, err)
	require.NotNil(t, tick.Bid)
	assert.Nil(t, tick.Ask)
}

func TestParseTick_OtherEvents(t *testing.T) {
	_, err := ParseTick([]byte(`{"event":"heartbeat"}`), time.Now())
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.NotErrorIs(t, err, ErrMalformedTick)
}

func TestSubscribeMessage(t *testing.T) {
	b, err := json.Marshal(SubscribeMessage([]string{"GOLD", "SILVER"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"request-data","data":["GOLD","SILVER"]}`, string(b))
}
