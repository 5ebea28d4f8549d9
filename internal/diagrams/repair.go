package diagrams

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not security
	"encoding/hex"
	"regexp"
	"strings"
)

// FlowDirections lists the accepted direction overrides.
var FlowDirections = []string{"TB", "TD", "BT", "RL", "LR"}

const fingerprintLen = 12

var (
	escapedBreakBeforeParen = regexp.MustCompile(`\\n\s*\(`)
	escapedBreak            = regexp.MustCompile(`\\n`)
	edgeLabel               = regexp.MustCompile(`(--+[->]?)\|([^|]+)\|`)
	nodeLabel               = regexp.MustCompile(`([\p{L}\p{N}_]+)?\[([^\]]+)\]`)
	flowDirective           = regexp.MustCompile(`(?m)^(flowchart|graph)\s+[A-Z]{2}\b`)
)

// Rules configures source repair.
type Rules struct {
	// FlowDirection, when set, replaces the direction of every
	// flowchart/graph directive.
	FlowDirection string
}

// Repair applies the fixed repair rules to a diagram source, in order:
// escaped line breaks become spaces, edge labels and node labels that
// contain parentheses are quoted, and the flow direction is overridden.
func Repair(src string, rules Rules) string {
	src = escapedBreakBeforeParen.ReplaceAllLiteralString(src, " (")
	src = escapedBreak.ReplaceAllLiteralString(src, " ")

	src = replaceSubmatches(edgeLabel, src, func(m []string) string {
		arrow, label := m[1], m[2]
		if strings.HasPrefix(label, `"`) || !hasParen(label) {
			return m[0]
		}
		return arrow + `|"` + label + `"|`
	})

	src = replaceSubmatches(nodeLabel, src, func(m []string) string {
		id, label := m[1], m[2]
		if strings.HasPrefix(label, `"`) || !hasParen(label) {
			return m[0]
		}
		return id + `["` + label + `"]`
	})

	if rules.FlowDirection != "" {
		src = flowDirective.ReplaceAllString(src, "${1} "+rules.FlowDirection)
	}
	return src
}

// Fingerprint returns the first 12 hex digits of the SHA-1 of src.
func Fingerprint(src string) string {
	sum := sha1.Sum([]byte(src)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

func hasParen(s string) bool {
	return strings.ContainsAny(s, "()")
}

// replaceSubmatches is ReplaceAllStringFunc with access to capture groups.
// Groups that did not participate are passed as "".
func replaceSubmatches(re *regexp.Regexp, s string, fn func([]string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
