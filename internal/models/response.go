package models

// DecisionPayload is the wire form of a routing decision
type DecisionPayload struct {
	RequestID       string  `json:"request_id"`
	Provider        string  `json:"provider"`
	ModelName       string  `json:"model"`
	Strategy        string  `json:"strategy"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level,omitempty"`
	Reasoning       string  `json:"reasoning"`
	EstimatedCost   float64 `json:"estimated_cost"`
	ComplexityScore float64 `json:"complexity_score"`
	Tier            string  `json:"tier"`
	Pattern         string  `json:"pattern"`
	SnapshotVersion string  `json:"snapshot_version,omitempty"`
}

// CompletionResponse is returned by the completions endpoint
type CompletionResponse struct {
	RequestID string           `json:"request_id"`
	Text      string           `json:"text"`
	Provider  string           `json:"provider"`
	ModelName string           `json:"model"`
	TokensIn  int              `json:"tokens_in"`
	TokensOut int              `json:"tokens_out"`
	Cost      float64          `json:"cost"`
	Cached    bool             `json:"cached"`
	Decision  *DecisionPayload `json:"decision,omitempty"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Code + ": " + e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Resp is the generic ok/info envelope for simple endpoints
type Resp struct {
	OK   bool        `json:"ok"`
	Info interface{} `json:"info"`
}
