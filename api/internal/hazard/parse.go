package hazard

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/xeipuuv/gojsonschema"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/util"
)

// FallbackSpeech is spoken when nothing usable is left of the model answer.
const FallbackSpeech = "unable to analyze image properly"

//go:embed hazard.schema.json
var schemaJSON string

var analysisSchema = mustSchema(schemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	sch, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic("hazard: bad embedded schema: " + err.Error())
	}
	return sch
}

// trailing HIGH/MED/LOW, optionally followed by punctuation
var severityTokenRe = regexp.MustCompile(`(?i)\b(HIGH|MEDIUM|MED|LOW)\W*$`)

type Kind int

const (
	KindStructured Kind = iota + 1
	KindFreeText
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindFreeText:
		return "free_text"
	}
	return "unknown"
}

// Output is the parsed model answer. Analysis is set only for KindStructured.
type Output struct {
	Kind       Kind
	Analysis   *Analysis
	SpeechText string
	Declared   Severity
}

func (o Output) Assessment() Assessment {
	return Assessment{Declared: o.Declared, SpeechText: o.SpeechText}
}

// ParseModelOutput разбирает ответ модели. Если это JSON-объект, то строгий
// путь по hazard.schema.json, иначе свободный текст с хвостовым токеном
// серьёзности.
func ParseModelOutput(raw string) (Output, error) {
	txt := util.StripCodeFences(raw)
	if strings.HasPrefix(txt, "{") || strings.HasPrefix(txt, "[") {
		return parseStructured(txt)
	}
	return parseFreeText(txt), nil
}

func parseStructured(txt string) (Output, error) {
	res, err := analysisSchema.Validate(gojsonschema.NewStringLoader(txt))
	if err != nil {
		return Output{}, &apperr.MalformedOutputError{Reason: "bad JSON: " + err.Error(), Payload: txt}
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Output{}, &apperr.MalformedOutputError{Reason: strings.Join(msgs, "; "), Payload: txt}
	}

	var a Analysis
	if err := json.Unmarshal([]byte(txt), &a); err != nil {
		return Output{}, &apperr.MalformedOutputError{Reason: "bad JSON: " + err.Error(), Payload: txt}
	}
	a.OverallSeverity = ParseSeverity(string(a.OverallSeverity))
	for i := range a.Findings {
		a.Findings[i].Position = Position(strings.ToUpper(strings.TrimSpace(string(a.Findings[i].Position))))
		a.Findings[i].Severity = ParseSeverity(string(a.Findings[i].Severity))
	}

	speech, _, _ := stripSeverityToken(a.SafeDirection)
	out := Output{
		Kind:       KindStructured,
		Analysis:   &a,
		SpeechText: speech,
		Declared:   a.OverallSeverity,
	}
	return withFallback(out), nil
}

func parseFreeText(txt string) Output {
	speech, tok, ok := stripSeverityToken(txt)
	declared := SeverityMedium
	if ok {
		declared = tok
	}
	return withFallback(Output{
		Kind:       KindFreeText,
		SpeechText: speech,
		Declared:   declared,
	})
}

// stripSeverityToken removes a terminal severity token. Sentence punctuation
// before the token stays; separators like "-" or ":" go with it.
func stripSeverityToken(s string) (string, Severity, bool) {
	loc := severityTokenRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return util.CollapseSpaces(s), "", false
	}
	tok := ParseSeverity(s[loc[2]:loc[3]])
	rest := strings.TrimRightFunc(s[:loc[0]], func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("-–—:;,|([", r)
	})
	return util.CollapseSpaces(rest), tok, true
}

// withFallback never hands out empty speech. The fallback is at least MEDIUM
// and keeps a declared HIGH.
func withFallback(o Output) Output {
	if o.SpeechText != "" {
		return o
	}
	o.SpeechText = FallbackSpeech
	if o.Declared != SeverityHigh {
		o.Declared = SeverityMedium
	}
	return o
}
