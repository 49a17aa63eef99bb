// Package preprocess rewrites loosely written flowchart markup into a
// form the external renderer accepts.
//
// The renderer rejects node labels containing characters it treats as
// syntax (parentheses, quotes, entity markers) unless the label is
// wrapped in double quotes. Users rarely quote labels by hand, so the
// preprocessor inserts the quoting for them without disturbing markup
// that is already valid.
package preprocess

import (
	"regexp"
	"strings"
)

// commentMarker starts a comment line in the markup.
const commentMarker = "%%"

// specialChars are the label characters the renderer cannot parse
// unquoted.
const specialChars = `()'"&#;`

// flowHeader matches the first substantive line of a flow diagram.
// Other diagram families have incompatible syntax and are returned
// verbatim.
var flowHeader = regexp.MustCompile(`^(flowchart|graph)\b`)

// structuralKeywords begin lines that never carry node labels.
var structuralKeywords = map[string]bool{
	"subgraph":  true,
	"end":       true,
	"direction": true,
	"click":     true,
	"class":     true,
	"classDef":  true,
	"style":     true,
	"linkStyle": true,
}

// shape describes one node delimiter pair. The pattern captures the
// node identifier and the label between the delimiters.
type shape struct {
	re    *regexp.Regexp
	open  string
	close string
}

// shapes are ordered most-specific first: double-delimiter shapes must
// be rewritten before their single-delimiter counterparts so that
// ((x)) is not misread as ( + (x) + ). Rewritten spans are masked, so
// later patterns cannot re-match them. Single-delimiter labels may
// contain one nesting level of their own delimiter.
var shapes = []shape{
	{regexp.MustCompile(`([A-Za-z0-9_]+)\[\[([^\[\]]*)\]\]`), "[[", "]]"},
	{regexp.MustCompile(`([A-Za-z0-9_]+)\(\(([^()]*)\)\)`), "((", "))"},
	{regexp.MustCompile(`([A-Za-z0-9_]+)\{\{([^{}]*)\}\}`), "{{", "}}"},
	{regexp.MustCompile(`([A-Za-z0-9_]+)\[((?:[^\[\]]|\[[^\[\]]*\])*)\]`), "[", "]"},
	{regexp.MustCompile(`([A-Za-z0-9_]+)\(((?:[^()]|\([^()]*\))*)\)`), "(", ")"},
	{regexp.MustCompile(`([A-Za-z0-9_]+)\{((?:[^{}]|\{[^{}]*\})*)\}`), "{", "}"},
	{regexp.MustCompile(`([A-Za-z0-9_]+)>([^\[\]]*)\]`), ">", "]"},
}

// Preprocess rewrites flowchart markup so unquoted labels containing
// renderer syntax characters become quoted. It is pure, deterministic
// and total: non-flow markup is returned unchanged, line order and
// count are preserved exactly, and a second pass is a no-op.
func Preprocess(markup string) string {
	if !isFlowDiagram(markup) {
		return markup
	}

	lines := strings.Split(markup, "\n")
	for i, line := range lines {
		lines[i] = processLine(line)
	}
	return strings.Join(lines, "\n")
}

// isFlowDiagram reports whether the first substantive line declares a
// flow diagram.
func isFlowDiagram(markup string) bool {
	for _, line := range strings.Split(markup, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentMarker) {
			continue
		}
		return flowHeader.MatchString(trimmed)
	}
	return false
}

// processLine rewrites the node labels on a single line.
func processLine(line string) string {
	// Preserve a CRLF ending through the rewrite.
	crlf := strings.HasSuffix(line, "\r")
	if crlf {
		line = strings.TrimSuffix(line, "\r")
	}

	if rewritable(line) {
		line = rewriteLine(line)
	}

	if crlf {
		line += "\r"
	}
	return line
}

// rewritable reports whether a line may carry node labels.
func rewritable(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, commentMarker) {
		return false
	}
	if flowHeader.MatchString(trimmed) {
		return false
	}
	first := trimmed
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		first = trimmed[:i]
	}
	return !structuralKeywords[first]
}

// maskToken returns the placeholder for mask slot i. Placeholders are
// private-use runes: they contain no word characters, so they can
// never be read as a node identifier by a later pattern.
func maskToken(i int) string {
	return string(rune(0xE000 + i))
}

// rewriteLine applies each shape pattern in order, replacing every
// processed node with a placeholder so less specific patterns cannot
// re-match inside it, then restores the placeholders.
func rewriteLine(line string) string {
	var masked []string

	for _, sh := range shapes {
		line = sh.re.ReplaceAllStringFunc(line, func(match string) string {
			sub := sh.re.FindStringSubmatch(match)
			node := sub[1] + sh.open + quoteLabel(sub[2]) + sh.close
			token := maskToken(len(masked))
			masked = append(masked, node)
			return token
		})
	}

	for i := len(masked) - 1; i >= 0; i-- {
		line = strings.Replace(line, maskToken(i), masked[i], 1)
	}
	return line
}

// quoteLabel wraps a label in double quotes when it contains renderer
// syntax characters. Already-quoted labels and plain labels pass
// through untouched; embedded quotes become the HTML quote entity.
func quoteLabel(label string) string {
	if len(label) >= 2 && strings.HasPrefix(label, `"`) && strings.HasSuffix(label, `"`) {
		return label
	}
	if !strings.ContainsAny(label, specialChars) {
		return label
	}
	return `"` + strings.ReplaceAll(label, `"`, "&quot;") + `"`
}
