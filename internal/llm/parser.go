package llm

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"jobbuddy-backend/internal/shared/apperr"
)

// Section is one titled block of the analysis.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Parsed holds the structured fields extracted from provider text.
type Parsed struct {
	FitScore       int       `json:"fitScore"`
	Suggestions    []string  `json:"suggestions"`
	StrategicNotes string    `json:"strategicNotes"`
	Sections       []Section `json:"sections"`
}

type wireAnalysis struct {
	FitScore       json.RawMessage `json:"fitScore"`
	Suggestions    []string        `json:"suggestions"`
	StrategicNotes string          `json:"strategicNotes"`
	Sections       []Section       `json:"sections"`
}

var (
	percentPattern = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
	scorePattern   = regexp.MustCompile(`(?i)score\s*(?:\*\*)?\s*[:=]?\s*(?:\*\*)?\s*(\d{1,3}(?:\.\d+)?)`)
	headerPattern  = regexp.MustCompile(`^\s{0,3}(#{1,6})\s*(.*?)\s*#*\s*$`)
	bulletPattern  = regexp.MustCompile(`^\s*(?:[-*•+]|\d{1,2}[.)])\s+(.+)$`)
	numberingLead  = regexp.MustCompile(`^\d{1,2}[.)]\s*`)

	suggestionKeywords   = []string{"suggest", "modif", "change", "strategy"}
	strategicKeywords    = []string{"strategic", "approach", "probability", "assessment"}
	scoreSectionKeywords = []string{"probability", "score", "match"}
)

// ParseAnalysis maps raw provider text to Parsed. It accepts a JSON object,
// optionally fenced or surrounded by prose, and falls back to markdown
// sections when no JSON object is present. Failures are *apperr.ParseError
// carrying raw.
func ParseAnalysis(raw string) (Parsed, error) {
	text := strings.TrimSpace(stripCodeFences(raw))
	if text == "" {
		return Parsed{}, &apperr.ParseError{Raw: raw, Reason: "empty response"}
	}
	if wire, ok := findJSONObject(text); ok {
		return fromWire(raw, wire)
	}
	return fromMarkdown(raw, text)
}

func fromWire(raw string, wire wireAnalysis) (Parsed, error) {
	if len(wire.FitScore) == 0 || string(wire.FitScore) == "null" {
		return Parsed{}, &apperr.ParseError{Raw: raw, Reason: "missing fitScore"}
	}
	score, err := scoreFromJSON(wire.FitScore)
	if err != nil {
		return Parsed{}, &apperr.ParseError{Raw: raw, Reason: err.Error()}
	}

	out := Parsed{
		FitScore:       score,
		Suggestions:    make([]string, 0, len(wire.Suggestions)),
		StrategicNotes: strings.TrimSpace(wire.StrategicNotes),
		Sections:       make([]Section, 0, len(wire.Sections)),
	}
	for _, s := range wire.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			out.Suggestions = append(out.Suggestions, s)
		}
	}
	for _, sec := range wire.Sections {
		sec.Title = strings.TrimSpace(sec.Title)
		sec.Body = strings.TrimSpace(sec.Body)
		if sec.Title == "" && sec.Body == "" {
			continue
		}
		out.Sections = append(out.Sections, sec)
	}
	return out, nil
}

func fromMarkdown(raw, text string) (Parsed, error) {
	sections := splitSections(text)
	score, ok, err := scoreFromText(text, sections)
	if err != nil {
		return Parsed{}, &apperr.ParseError{Raw: raw, Reason: err.Error()}
	}
	if !ok {
		return Parsed{}, &apperr.ParseError{Raw: raw, Reason: "no fit score found"}
	}

	out := Parsed{
		FitScore:    score,
		Suggestions: []string{},
		Sections:    sections,
	}
	for _, sec := range sections {
		if !titleHas(sec.Title, suggestionKeywords) {
			continue
		}
		for _, line := range strings.Split(sec.Body, "\n") {
			if m := bulletPattern.FindStringSubmatch(line); m != nil {
				if item := cleanInline(m[1]); item != "" {
					out.Suggestions = append(out.Suggestions, item)
				}
			}
		}
	}
	for _, kw := range strategicKeywords {
		for _, sec := range sections {
			if titleHas(sec.Title, []string{kw}) {
				out.StrategicNotes = sec.Body
				break
			}
		}
		if out.StrategicNotes != "" {
			break
		}
	}
	return out, nil
}

// findJSONObject decodes the first JSON object in text that carries a fitScore key.
func findJSONObject(text string) (wireAnalysis, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var fields map[string]json.RawMessage
		if err := dec.Decode(&fields); err != nil {
			continue
		}
		if _, ok := fields["fitScore"]; !ok {
			continue
		}
		var wire wireAnalysis
		end := i + int(dec.InputOffset())
		if err := json.Unmarshal([]byte(text[i:end]), &wire); err != nil {
			continue
		}
		return wire, true
	}
	return wireAnalysis{}, false
}

func scoreFromJSON(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return normalizeScore(num)
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
		if v, err := strconv.ParseFloat(str, 64); err == nil {
			return normalizeScore(v)
		}
	}
	return 0, scoreRangeError(string(raw))
}

// scoreFromText prefers a score inside a section titled "probability",
// "score" or "match" (in that order), then one on a line mentioning "match", then the
// earliest percentage or "score: N" anywhere.
func scoreFromText(text string, sections []Section) (int, bool, error) {
	value, ok := "", false
	for _, kw := range scoreSectionKeywords {
		for _, sec := range sections {
			if titleHas(sec.Title, []string{kw}) {
				if value, ok = firstScore(sec.Title + "\n" + sec.Body); ok {
					break
				}
			}
		}
		if ok {
			break
		}
	}
	if !ok {
		for _, line := range strings.Split(text, "\n") {
			if strings.Contains(strings.ToLower(line), "match") {
				if value, ok = firstScore(line); ok {
					break
				}
			}
		}
	}
	if !ok {
		value, ok = firstScore(text)
	}
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, scoreRangeError(value)
	}
	score, err := normalizeScore(v)
	return score, err == nil, err
}

// firstScore returns the earliest percentage or "score: N" value in text.
func firstScore(text string) (string, bool) {
	best := -1
	var value string
	for _, re := range []*regexp.Regexp{percentPattern, scorePattern} {
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			if best == -1 || loc[0] < best {
				best = loc[0]
				value = text[loc[2]:loc[3]]
			}
		}
	}
	return value, best != -1
}

func normalizeScore(v float64) (int, error) {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return 0, scoreRangeError(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return int(math.Round(v)), nil
}

type scoreRangeError string

func (e scoreRangeError) Error() string {
	return "invalid fit score (want 0..100): " + string(e)
}

// splitSections splits markdown on headers. Text before the first header
// becomes a "Summary" section.
func splitSections(text string) []Section {
	var (
		sections []Section
		current  *Section
		body     strings.Builder
		preamble strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(body.String())
			sections = append(sections, *current)
		}
		body.Reset()
	}
	for _, line := range strings.Split(text, "\n") {
		if m := headerPattern.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[2]) != "" {
			flush()
			current = &Section{Title: cleanTitle(m[2])}
			continue
		}
		if current == nil {
			preamble.WriteString(line)
			preamble.WriteString("\n")
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()
	if p := strings.TrimSpace(preamble.String()); p != "" {
		sections = append([]Section{{Title: "Summary", Body: p}}, sections...)
	}
	if sections == nil {
		sections = []Section{}
	}
	return sections
}

func cleanTitle(title string) string {
	title = cleanInline(title)
	return strings.TrimSpace(numberingLead.ReplaceAllString(title, ""))
}

func cleanInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return strings.TrimSpace(s)
}

func titleHas(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// stripCodeFences drops ``` fence lines and keeps their contents.
func stripCodeFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
