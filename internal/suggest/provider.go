// Package suggest asks an external service for replacement candidates of a
// selected stretch of original text. It never edits anything: candidates
// are offered to the user, who still issues the correction.
package suggest

import (
	"context"
	"fmt"
	"strings"
)

// Provider produces candidate replacements
type Provider interface {
	// Name returns the provider name
	Name() string

	// Suggest returns candidates for req.Text
	Suggest(ctx context.Context, req Request) (*Response, error)
}

// Request describes the text to normalize
type Request struct {
	// Text is the original text under the selection
	Text string

	// Before and After carry surrounding original text for context
	Before string
	After  string

	// Known are candidates the document already carries, excluded from
	// the answer
	Known []string

	// Max caps the number of candidates (0 means DefaultMaxCandidates)
	Max int
}

// Response holds the candidates in provider order
type Response struct {
	Candidates []string `json:"candidates"`
	Model      string   `json:"model,omitempty"`
	TokensUsed int      `json:"tokens_used,omitempty"`
	Cached     bool     `json:"cached,omitempty"`
}

// DefaultMaxCandidates is used when Request.Max is zero
const DefaultMaxCandidates = 5

func (r Request) max() int {
	if r.Max <= 0 {
		return DefaultMaxCandidates
	}
	return r.Max
}

// BuildPrompt constructs the user prompt for a request
func BuildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Propose up to %d normalized spellings for the historical text fragment below.\n", req.max())
	b.WriteString("Answer with one candidate per line and nothing else.\n\n")
	if req.Before != "" || req.After != "" {
		fmt.Fprintf(&b, "Context: %s[[%s]]%s\n", req.Before, req.Text, req.After)
	}
	fmt.Fprintf(&b, "Fragment: %s\n", req.Text)
	if len(req.Known) > 0 {
		fmt.Fprintf(&b, "Already known, do not repeat: %s\n", strings.Join(req.Known, ", "))
	}
	return b.String()
}

// ParseCandidates turns a line-per-candidate answer into a clean list:
// list markers and quotes are stripped, blanks, duplicates, known values
// and the original text itself are dropped, and the result is capped at max.
func ParseCandidates(answer, original string, known []string, max int) []string {
	skip := make(map[string]bool, len(known)+1)
	skip[original] = true
	for _, k := range known {
		skip[k] = true
	}

	var out []string
	for _, line := range strings.Split(answer, "\n") {
		c := cleanLine(line)
		if c == "" || skip[c] {
			continue
		}
		skip[c] = true
		out = append(out, c)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*•")
	// "1." / "2)" numbering
	if i := strings.IndexAny(line, ".)"); i > 0 && i <= 3 && isDigits(line[:i]) {
		line = line[i+1:]
	}
	line = strings.TrimSpace(line)
	line = strings.Trim(line, `"'`+"`")
	return strings.TrimSpace(line)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
