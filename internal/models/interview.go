package models

import "time"

// InterviewStatus is the lifecycle state of a stored interview session.
type InterviewStatus string

const (
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
)

// InterviewConfig is fixed when the session is created.
type InterviewConfig struct {
	Type            string `json:"type" bson:"type"`
	SubType         string `json:"subType,omitempty" bson:"subType,omitempty"`
	Industry        string `json:"industry" bson:"industry"`
	Role            string `json:"role" bson:"role"`
	Difficulty      string `json:"difficulty" bson:"difficulty"`
	DurationMinutes int    `json:"durationMinutes" bson:"durationMinutes"`
	VoiceEnabled    bool   `json:"voiceEnabled" bson:"voiceEnabled"`
}

// QuestionAnswer is one question/answer exchange. Timestamps are unix millis.
type QuestionAnswer struct {
	QuestionID   string   `json:"questionId" bson:"questionId"`
	QuestionText string   `json:"questionText" bson:"questionText"`
	AnswerText   string   `json:"answerText" bson:"answerText"`
	StartTs      int64    `json:"startTs" bson:"startTs"`
	EndTs        int64    `json:"endTs" bson:"endTs"`
	AIScore      *float64 `json:"aiScore,omitempty" bson:"aiScore,omitempty"`
	AIFeedback   string   `json:"aiFeedback,omitempty" bson:"aiFeedback,omitempty"`
	ModelAnswer  string   `json:"modelAnswer,omitempty" bson:"modelAnswer,omitempty"`
}

// InterviewMetrics is frozen by finish. FillerCount, ConfidenceScore and
// WordCount are computed by the client and stored as zero here.
type InterviewMetrics struct {
	AvgResponseTime float64  `json:"avgResponseTime" bson:"avgResponseTime"`
	FillerCount     int      `json:"fillerCount" bson:"fillerCount"`
	ConfidenceScore float64  `json:"confidenceScore" bson:"confidenceScore"`
	WordCount       int      `json:"wordCount" bson:"wordCount"`
	SpeakingPace    *float64 `json:"speakingPace,omitempty" bson:"speakingPace,omitempty"`
}

// Interview is the persisted session document.
type Interview struct {
	ID            string            `json:"id" bson:"_id"`
	UserID        string            `json:"userId" bson:"userId"`
	Config        InterviewConfig   `json:"config" bson:"config"`
	StartedAt     time.Time         `json:"startedAt" bson:"startedAt"`
	EndedAt       *time.Time        `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	Status        InterviewStatus   `json:"status" bson:"status"`
	Transcript    string            `json:"transcript" bson:"transcript"`
	QA            []QuestionAnswer  `json:"qa" bson:"qa"`
	FirstQuestion string            `json:"firstQuestion" bson:"firstQuestion"`
	OverallScore  *float64          `json:"overallScore,omitempty" bson:"overallScore,omitempty"`
	Metrics       *InterviewMetrics `json:"metrics,omitempty" bson:"metrics,omitempty"`
}

// CurrentQuestion is the question the next answer responds to: the last
// turn's question, or the opening question before any turn exists.
func (i *Interview) CurrentQuestion() string {
	if n := len(i.QA); n > 0 {
		return i.QA[n-1].QuestionText
	}
	return i.FirstQuestion
}
