package llm

import "github.com/hydroanalytics/hydroforecast-go/internal/models"

// AnalyzeRequest carries the full combined series to the analysis
// endpoint of the text-generation service.
type AnalyzeRequest struct {
	Series models.CombinedSeries `json:"series"`
}

// AnalyzeResponse is the analysis endpoint's success payload.
type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
}

// ChatRequest carries a user question plus the bounded context summary.
// The raw point arrays are never sent; the summary keeps the payload
// size independent of dataset length.
type ChatRequest struct {
	Question       string `json:"question"`
	ContextSummary string `json:"context_summary"`
}

// ChatResponse is the chat endpoint's success payload.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the error payload returned with a non-success status.
type ErrorResponse struct {
	Error string `json:"error"`
}
