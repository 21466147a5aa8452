package doctree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format is an output format for a rendered tree.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatJSON, FormatYAML}
}

// ParseFormat parses a format name. "md" and "yml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (valid: markdown, json, yaml)", s)
}

// document is the structured form shared by the JSON and YAML renderers.
type document struct {
	Root   *Node       `json:"root" yaml:"root"`
	Errors []FileError `json:"errors" yaml:"errors"`
	Stats  Stats       `json:"stats" yaml:"stats"`
}

func (t *Tree) document() document {
	errs := t.Errors
	if errs == nil {
		errs = []FileError{}
	}
	return document{Root: t.Root, Errors: errs, Stats: t.Stats}
}

// Render writes t to w in the given format.
func Render(w io.Writer, t *Tree, format Format) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, t.Markdown())
		return err

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(t.document()); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil

	case FormatYAML:
		data, err := yaml.Marshal(t.document())
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	return fmt.Errorf("unknown output format %q", format)
}

// Markdown renders the tree as a nested bullet list under a heading named
// after the root directory.
func (t *Tree) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(t.Root.Name))
	if len(t.Root.Children) == 0 {
		sb.WriteString("_No briefs found._\n")
		return sb.String()
	}

	for _, c := range t.Root.Children {
		writeMarkdownNode(&sb, c, 0)
	}
	return sb.String()
}

func writeMarkdownNode(sb *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)

	if n.Dir {
		fmt.Fprintf(sb, "%s- **%s/**\n", indent, escapeMarkdown(n.Name))
		for _, c := range n.Children {
			writeMarkdownNode(sb, c, depth+1)
		}
		return
	}

	link := fmt.Sprintf("[%s](%s)", escapeMarkdown(n.Name), linkTarget(n.Path))
	if n.Brief == "" {
		fmt.Fprintf(sb, "%s- %s\n", indent, link)
		return
	}
	fmt.Fprintf(sb, "%s- %s: %s\n", indent, link, escapeMarkdown(n.Brief))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
)

// escapeMarkdown backslash-escapes characters that would otherwise render as
// inline formatting, links or HTML.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var targetEscaper = strings.NewReplacer(`\`, `\\`, `<`, `\<`, `>`, `\>`)

// linkTarget returns p as a link destination. Paths with whitespace or
// parentheses use the angle-bracket form so the link does not end early.
func linkTarget(p string) string {
	if !strings.ContainsAny(p, " \t()<>\\") {
		return p
	}
	return "<" + targetEscaper.Replace(p) + ">"
}
