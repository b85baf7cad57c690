package hazard

import "strings"

// Escalate returns the severity reported to the app.
//
// A declared HIGH or MEDIUM is trusted as is. Otherwise the speech prefix
// decides: STOP is HIGH, CAUTION and SLOW are MEDIUM, anything else is LOW.
// Escalate is pure; feeding its result back as the declared severity with the
// same speech yields the same value.
func Escalate(a Assessment) Severity {
	switch ParseSeverity(string(a.Declared)) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	}

	speech := strings.ToUpper(strings.TrimSpace(a.SpeechText))
	switch {
	case strings.HasPrefix(speech, "STOP"):
		return SeverityHigh
	case strings.HasPrefix(speech, "CAUTION"), strings.HasPrefix(speech, "SLOW"):
		return SeverityMedium
	}
	return SeverityLow
}

// Normalize turns parsed model output into the response sent to the app.
func Normalize(out Output) Response {
	a := out.Assessment()
	return Response{
		SpeechText: a.SpeechText,
		Severity:   Escalate(a),
	}
}
