package models

type StartInterviewResponse struct {
	InterviewID   string `json:"interviewId"`
	FirstQuestion string `json:"firstQuestion"`
}

// NextQuestion is null once the interview is complete.
type SubmitAnswerResponse struct {
	NextQuestion *string        `json:"nextQuestion"`
	Evaluation   map[string]any `json:"evaluation"`
	Completed    bool           `json:"completed"`
}

type FinishInterviewResponse struct {
	ReportID     string  `json:"reportId"`
	OverallScore float64 `json:"overallScore"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
