package hazard

import "strings"

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// ParseSeverity accepts the spellings the model uses ("MED" included) and
// returns "" for anything else.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return SeverityHigh
	case "MEDIUM", "MED":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	}
	return ""
}

type Position string

const (
	PositionFront Position = "FRONT"
	PositionLeft  Position = "LEFT"
	PositionRight Position = "RIGHT"
)

// Record: одна найденная помеха.
type Record struct {
	Position    Position `json:"position"`
	Category    string   `json:"type"` // "Path Obstructions", "Ground Conditions"...
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Analysis: структурированный ответ модели (hazard.schema.json).
type Analysis struct {
	Findings        []Record `json:"hazards"`
	OverallSeverity Severity `json:"severity"`
	SafeDirection   string   `json:"safe_direction"`
}

// Assessment is the single shape the escalation engine consumes. Declared is
// empty when the source carried no severity at all.
type Assessment struct {
	Declared   Severity
	SpeechText string
}

// Response is returned to the app; SpeechText goes straight to TTS.
type Response struct {
	SpeechText string   `json:"speechText"`
	Severity   Severity `json:"severity"`
}
