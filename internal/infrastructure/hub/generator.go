package hub

import (
	"math/rand"
	"strconv"
	"time"
)

// DefaultSymbol is the ticker symbol used by the default sampler
const DefaultSymbol = "AAPL"

// StockPayload is the payload of a generator event.
type StockPayload struct {
	Type      string `json:"type"`
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Change    string `json:"change"`
	Timestamp string `json:"timestamp"`
	ID        uint64 `json:"id"`
}

// StockSampler synthesizes a price-like payload: a price in [150, 160) and a
// change in [-1, 1), both rendered with two decimals.
type StockSampler struct {
	symbol string
}

func NewStockSampler(symbol string) *StockSampler {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &StockSampler{symbol: symbol}
}

func (s *StockSampler) Sample(seq uint64, now time.Time) any {
	return StockPayload{
		Type:      string(EventTypeStockUpdate),
		Symbol:    s.symbol,
		Price:     strconv.FormatFloat(150+rand.Float64()*10, 'f', 2, 64),
		Change:    strconv.FormatFloat(rand.Float64()*2-1, 'f', 2, 64),
		Timestamp: FormatTimestamp(now),
		ID:        seq,
	}
}
