package models

// Question is an entry of the static question bank.
type Question struct {
	ID         string   `json:"id" yaml:"id"`
	Text       string   `json:"text" yaml:"text"`
	Category   string   `json:"category" yaml:"category"`
	Difficulty string   `json:"difficulty" yaml:"difficulty"`
	Tags       []string `json:"tags" yaml:"tags"`
}
