package models

// interview types accepted in a config
var ValidInterviewTypes = map[string]bool{
	"technical":  true,
	"behavioral": true,
	"hr":         true,
	"case-study": true,
}

// optional interview sub types
var ValidSubTypes = map[string]bool{
	"dsa":           true,
	"system-design": true,
	"star":          true,
}

var ValidDifficulties = map[string]bool{
	"entry":  true,
	"mid":    true,
	"senior": true,
}

// planned durations, in minutes
var ValidDurations = map[int]bool{
	15: true,
	30: true,
	45: true,
	60: true,
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func InterviewTypesList() []string {
	return []string{"technical", "behavioral", "hr", "case-study"}
}

func SubTypesList() []string {
	return []string{"dsa", "system-design", "star"}
}

func DifficultiesList() []string {
	return []string{"entry", "mid", "senior"}
}
