package models

import (
	"fmt"
	"strings"
)

type StartInterviewRequest struct {
	Config *InterviewConfig `json:"config"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	if r.Config == nil {
		return &ErrorResponse{
			Code:    "missing_config",
			Message: "config field is required",
		}
	}
	return r.Config.Validate()
}

// Validate checks enumeration membership only; free-text fields are passed through.
func (c *InterviewConfig) Validate() error {
	var details []ValidationErrorDetail

	if !ValidInterviewTypes[c.Type] {
		details = append(details, ValidationErrorDetail{
			Field:  "config.type",
			Reason: "must be one of: " + strings.Join(InterviewTypesList(), ", "),
		})
	}
	if c.SubType != "" && !ValidSubTypes[c.SubType] {
		details = append(details, ValidationErrorDetail{
			Field:  "config.subType",
			Reason: "must be one of: " + strings.Join(SubTypesList(), ", "),
		})
	}
	if !ValidDifficulties[c.Difficulty] {
		details = append(details, ValidationErrorDetail{
			Field:  "config.difficulty",
			Reason: "must be one of: " + strings.Join(DifficultiesList(), ", "),
		})
	}
	if !ValidDurations[c.DurationMinutes] {
		details = append(details, ValidationErrorDetail{
			Field:  "config.durationMinutes",
			Reason: "must be one of: 15, 30, 45, 60",
		})
	}

	if len(details) > 0 {
		return &ErrorResponse{
			Code:    "validation_error",
			Message: fmt.Sprintf("invalid interview config (%d field errors)", len(details)),
			Details: details,
		}
	}
	return nil
}

type SubmitAnswerRequest struct {
	AnswerText        string  `json:"answerText"`
	ElapsedMs         int64   `json:"elapsedMs"`
	PartialTranscript *string `json:"partialTranscript,omitempty"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if r.ElapsedMs < 0 {
		return &ErrorResponse{
			Code:    "invalid_elapsed_ms",
			Message: "elapsedMs must not be negative",
		}
	}
	return nil
}
