package types

import "time"

// MarketTicker is one timestamped price snapshot for a symbol
type MarketTicker struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Change24h float64   `json:"change_24h"`
	Volume    float64   `json:"volume"`
}

// PriceStats summarizes a price history window
type PriceStats struct {
	Symbol        string  `json:"symbol"`
	Days          int     `json:"days"`
	Points        int     `json:"points"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"stddev"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	ChangePercent float64 `json:"change_percent"`
}
