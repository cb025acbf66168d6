// Package secrets detects credential-like patterns in file content before
// it is chunked and embedded. A match never carries the matched value out
// of this package; only the rule name and location are reported, so the
// ingestion report cannot itself leak a secret.
package secrets

import "strings"

// DefaultMaxContentLength caps how much content a single scan inspects (1 MB).
// Files larger than the ingestion size ceiling never reach the detector, so
// this is a backstop, not policy.
const DefaultMaxContentLength = 1 << 20

// Match describes a single rule hit.
type Match struct {
	Rule     string
	Line     int // 1-based line number of the match
	Severity Severity
}

// Result holds the outcome of scanning one document.
type Result struct {
	Found   bool
	Matches []Match
}

// Detector scans text for credential-like patterns using a configurable rule set.
type Detector struct {
	rules            []Rule
	maxContentLength int
}

// NewDetector creates a Detector with the given rules. Rules with a nil
// pattern are dropped rather than rejected; a detector bug must not block
// ingestion.
func NewDetector(rules []Rule) *Detector {
	valid := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Pattern != nil && r.Name != "" {
			valid = append(valid, r)
		}
	}
	return &Detector{rules: valid, maxContentLength: DefaultMaxContentLength}
}

// NewDefaultDetector creates a Detector with the built-in rule set.
func NewDefaultDetector() *Detector {
	return NewDetector(DefaultRules())
}

// Scan checks content against every rule and reports all matches.
// Content beyond the length cap is ignored; oversized or otherwise
// unscannable input reports no match.
func (d *Detector) Scan(content string) Result {
	if content == "" {
		return Result{}
	}
	if len(content) > d.maxContentLength {
		content = content[:d.maxContentLength]
	}

	var result Result
	for _, rule := range d.rules {
		loc := rule.Pattern.FindStringIndex(content)
		if loc == nil {
			continue
		}
		result.Found = true
		result.Matches = append(result.Matches, Match{
			Rule:     rule.Name,
			Line:     1 + strings.Count(content[:loc[0]], "\n"),
			Severity: rule.Severity,
		})
	}
	return result
}

// RuleNames returns the names of the matched rules, for report details.
func (r Result) RuleNames() []string {
	names := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		names = append(names, m.Rule)
	}
	return names
}
