package types

// ChatRequest is the body of a chat call
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the reply to a chat call
type ChatResponse struct {
	Response string `json:"response"`
}

// AnalyzeResponse is the on-demand analysis of a news item
type AnalyzeResponse struct {
	ID        string  `json:"id"`
	Sentiment float64 `json:"sentiment"`
}

// PriceResponse is the latest price of a symbol
type PriceResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}
