// Package brief pulls the one-line @brief summary out of a source file.
//
// Only a bounded prefix of each file is read. The comment dialects are tried
// in a fixed order (block-star, HTML, double-slash, hash) and within a dialect
// comments are tried in the order they appear; the first comment containing
// the tag wins. A file with two tagged comments therefore reports whichever
// comes first by that ordering, even when the other one is physically higher
// in the file. No attempt is made to detect such duplicates.
package brief

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/doctree/internal/comment"
)

const (
	// Tag marks the comment whose trailing text is the file's brief.
	Tag = "@brief"

	// DefaultSearchDepth is the number of leading lines scanned per file.
	DefaultSearchDepth = 20
)

// Brief is the extracted summary of one file.
type Brief struct {
	// Text is the single trimmed line following the tag.
	Text string `json:"brief" yaml:"brief"`
	// Dialect is the comment syntax the brief was found in.
	Dialect comment.Kind `json:"dialect" yaml:"dialect"`
	// Line is the 1-based line of the comment's opening delimiter.
	Line int `json:"line" yaml:"line"`
}

func (b Brief) String() string {
	return b.Text
}

// Extractor finds briefs in files. It holds no per-file state and is safe
// for concurrent use.
type Extractor struct {
	dialects []comment.Dialect
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDialects overrides the dialects tried and their order.
func WithDialects(dialects ...comment.Dialect) Option {
	return func(e *Extractor) {
		if len(dialects) > 0 {
			e.dialects = dialects
		}
	}
}

// New creates an Extractor using comment.Priority() order.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		dialects: comment.Priority(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract runs the default Extractor on path.
func Extract(path string, searchDepth int) (Brief, error) {
	return defaultExtractor.Extract(path, searchDepth)
}

// Extract reads the first searchDepth lines of path and returns the brief
// found there. Failures are returned as *Failure.
func (e *Extractor) Extract(path string, searchDepth int) (Brief, error) {
	f, err := os.Open(path)
	if err != nil {
		e.logger.Debug("cannot open file", "path", path, "error", err)
		return Brief{}, &Failure{Kind: UnreadableFile, Path: path, Err: err}
	}
	defer f.Close()

	return e.ExtractFrom(path, f, searchDepth)
}

// ExtractFrom is Extract over an already open reader. name is only used to
// label failures.
func (e *Extractor) ExtractFrom(name string, r io.Reader, searchDepth int) (Brief, error) {
	if searchDepth < 1 {
		searchDepth = DefaultSearchDepth
	}

	buf, err := readLines(r, searchDepth)
	if err != nil {
		e.logger.Debug("cannot read file", "path", name, "error", err)
		return Brief{}, &Failure{Kind: UnreadableFile, Path: name, Err: err}
	}

	b, ok := e.search(buf)
	if !ok {
		e.logger.Debug("no brief in scanned prefix", "path", name, "depth", searchDepth)
		return Brief{}, &Failure{Kind: NoBriefFound, Path: name}
	}

	e.logger.Debug("found brief", "path", name, "dialect", b.Dialect, "line", b.Line)
	return b, nil
}

// search applies the dialects in order and stops at the first tagged comment.
func (e *Extractor) search(buf string) (Brief, bool) {
	for _, d := range e.dialects {
		for span := range d.FindAll(buf) {
			text, ok := isolateArgument(span.Doc)
			if !ok {
				continue
			}
			return Brief{Text: text, Dialect: span.Kind, Line: span.Line}, true
		}
	}
	return Brief{}, false
}

// errNotText is reported when the scanned prefix is not valid UTF-8.
var errNotText = errors.New("content is not valid UTF-8 text")

// readLines reads at most n lines from r, keeping line breaks. Hitting EOF
// early is not an error.
func readLines(r io.Reader, n int) (string, error) {
	br := bufio.NewReader(r)
	var sb strings.Builder

	for i := 0; i < n; i++ {
		line, err := br.ReadString('\n')
		sb.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read line %d: %w", i+1, err)
		}
	}

	buf := sb.String()
	if !utf8.ValidString(buf) {
		return "", errNotText
	}
	return buf, nil
}

// isolateArgument returns the text following the tag on the tag's own line.
// ok is false when doc does not contain the tag.
func isolateArgument(doc string) (text string, ok bool) {
	idx := strings.Index(doc, Tag)
	if idx < 0 {
		return "", false
	}

	arg := doc[idx+len(Tag):]
	if nl := strings.IndexByte(arg, '\n'); nl >= 0 {
		arg = arg[:nl]
	}

	arg = strings.TrimSpace(arg)
	arg = strings.TrimSuffix(arg, "-->")
	arg = strings.Trim(arg, " \t\r-")

	// A repeated leading tag is dropped; a tag later in the text is kept.
	for strings.HasPrefix(arg, Tag) {
		rest := arg[len(Tag):]
		if rest != "" && !strings.ContainsRune(" \t\r-", rune(rest[0])) {
			break
		}
		arg = strings.Trim(rest, " \t\r-")
	}
	return strings.TrimSpace(arg), true
}
