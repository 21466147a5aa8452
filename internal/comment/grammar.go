package comment

import (
	"iter"
	"regexp"
	"strings"
)

// Each expression captures the comment interior as group 1. Block forms use
// a lazy quantifier so that the first closing delimiter ends the comment.
var (
	blockStar   = &grammar{kind: BlockStar, re: regexp.MustCompile(`(?s)/\*(.*?)\*/`)}
	html        = &grammar{kind: HTML, re: regexp.MustCompile(`(?s)<!--(.*?)-->`)}
	doubleSlash = &grammar{kind: DoubleSlash, re: regexp.MustCompile(`//([^\n]*)`)}
	hash        = &grammar{kind: Hash, re: regexp.MustCompile(`#([^\n]*)`)}
)

// grammar is a Dialect backed by a regular expression.
type grammar struct {
	kind Kind
	re   *regexp.Regexp
}

func (g *grammar) Kind() Kind {
	return g.kind
}

func (g *grammar) FindAll(buf string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		pos := 0
		line := 1
		counted := 0
		for pos <= len(buf) {
			loc := g.re.FindStringSubmatchIndex(buf[pos:])
			if loc == nil {
				return
			}
			start, end := pos+loc[0], pos+loc[1]
			docStart, docEnd := pos+loc[2], pos+loc[3]

			line += strings.Count(buf[counted:start], "\n")
			counted = start

			span := Span{
				Kind:   g.kind,
				Text:   buf[start:end],
				Doc:    buf[docStart:docEnd],
				Offset: start,
				Line:   line,
			}
			if !yield(span) {
				return
			}

			// Every grammar consumes at least its opening delimiter, so end > start.
			pos = end
		}
	}
}
