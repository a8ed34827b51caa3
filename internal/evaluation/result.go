package evaluation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when there is nothing to parse
var ErrEmptyResponse = errors.New("empty evaluation response")

// Dimension is the score and advice for one aspect of the attempt
type Dimension struct {
	Score  int    `json:"score"`
	Advice string `json:"advice"`
}

// Report is the structured evaluation
type Report struct {
	OverallScore   int        `json:"overallScore"`
	OverallAdvice  string     `json:"overallAdvice,omitempty"`
	Pronunciation  *Dimension `json:"pronunciation,omitempty"`
	Prosody        *Dimension `json:"prosody,omitempty"`
	Fluency        *Dimension `json:"fluency,omitempty"`
	Chunking       *Dimension `json:"chunking,omitempty"`
	Expressiveness *Dimension `json:"expressiveness,omitempty"`
}

// Result is either a structured Report or a flat advisory text
type Result struct {
	Report *Report `json:"report,omitempty"`
	Advice string  `json:"advice,omitempty"`
}

// NamedDimension pairs a dimension with its display name
type NamedDimension struct {
	Name string
	Dimension
}

// IsStructured reports whether the result carries scores
func (r Result) IsStructured() bool {
	return r.Report != nil
}

// IsZero reports whether the result holds nothing
func (r Result) IsZero() bool {
	return r.Report == nil && r.Advice == ""
}

// Dimensions returns the present dimensions in display order
func (r *Report) Dimensions() []NamedDimension {
	all := []struct {
		name string
		dim  *Dimension
	}{
		{"Pronunciation", r.Pronunciation},
		{"Prosody", r.Prosody},
		{"Fluency", r.Fluency},
		{"Chunking", r.Chunking},
		{"Expressiveness", r.Expressiveness},
	}

	out := make([]NamedDimension, 0, len(all))
	for _, d := range all {
		if d.dim != nil {
			out = append(out, NamedDimension{Name: d.name, Dimension: *d.dim})
		}
	}
	return out
}

// Parse decodes an evaluation response strictly. A JSON object must match the
// report schema with every score in 0..100; a JSON string is taken as flat
// advice. Anything else is an error and no partial result is returned.
func Parse(raw []byte) (Result, error) {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return Result{}, ErrEmptyResponse
	}

	switch body[0] {
	case '"':
		var advice string
		if err := json.Unmarshal(body, &advice); err != nil {
			return Result{}, fmt.Errorf("failed to parse evaluation advice: %w", err)
		}
		if strings.TrimSpace(advice) == "" {
			return Result{}, ErrEmptyResponse
		}
		return Result{Advice: advice}, nil
	case '{':
		var rep struct {
			Report
			OverallScore *int `json:"overallScore"`
		}
		if err := json.Unmarshal(body, &rep); err != nil {
			return Result{}, fmt.Errorf("failed to parse evaluation: %w", err)
		}
		if rep.OverallScore == nil {
			return Result{}, fmt.Errorf("failed to parse evaluation: overallScore missing")
		}
		rep.Report.OverallScore = *rep.OverallScore
		if err := rep.Report.validate(); err != nil {
			return Result{}, err
		}
		return Result{Report: &rep.Report}, nil
	default:
		return Result{}, fmt.Errorf("failed to parse evaluation: unexpected content %q", truncate(string(body), 40))
	}
}

func (r *Report) validate() error {
	if r.OverallScore < 0 || r.OverallScore > 100 {
		return fmt.Errorf("overall score out of range: %d", r.OverallScore)
	}
	for _, d := range r.Dimensions() {
		if d.Score < 0 || d.Score > 100 {
			return fmt.Errorf("%s score out of range: %d", strings.ToLower(d.Name), d.Score)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Format renders the result as plain text for terminal output
func (r Result) Format() string {
	if r.Report == nil {
		return r.Advice
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Overall: %d/100\n", r.Report.OverallScore)
	if r.Report.OverallAdvice != "" {
		fmt.Fprintf(&b, "%s\n", r.Report.OverallAdvice)
	}
	for _, d := range r.Report.Dimensions() {
		fmt.Fprintf(&b, "\n%-15s %3d  %s", d.Name, d.Score, d.Advice)
	}
	return b.String()
}
