package models

// raw output of one text-generation call
type GenerationResponse struct {
	Content  string             `json:"content"`
	Metadata GenerationMetadata `json:"metadata"`
}

type GenerationMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	Tier           string `json:"tier"`
}
