package doctree

import (
	"sort"
	"strings"

	"github.com/mvp-joe/doctree/internal/brief"
)

// FileErrorKind classifies a file that contributed no brief.
type FileErrorKind string

const (
	// KindNoBrief is a soft warning: the file has no tagged comment.
	KindNoBrief FileErrorKind = "no-brief"
	// KindUnreadable is a hard error: the file could not be read as text.
	KindUnreadable FileErrorKind = "unreadable"
)

// FileError records why a file is missing from the tree.
type FileError struct {
	Path   string        `json:"path" yaml:"path"`
	Kind   FileErrorKind `json:"kind" yaml:"kind"`
	Detail string        `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Node is a directory or file in the rendered tree.
type Node struct {
	Name string `json:"name" yaml:"name"`
	// Path is slash-separated and relative to the scanned root.
	Path     string  `json:"path" yaml:"path"`
	Dir      bool    `json:"dir,omitempty" yaml:"dir,omitempty"`
	Brief    string  `json:"brief,omitempty" yaml:"brief,omitempty"`
	Dialect  string  `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	Line     int     `json:"line,omitempty" yaml:"line,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Stats summarizes one build.
type Stats struct {
	FilesScanned          int     `json:"files_scanned" yaml:"files_scanned"`
	Briefs                int     `json:"briefs" yaml:"briefs"`
	Missing               int     `json:"missing" yaml:"missing"`
	Unreadable            int     `json:"unreadable" yaml:"unreadable"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds" yaml:"processing_time_seconds"`
}

// Tree is the aggregated documentation tree of a source directory.
type Tree struct {
	Root   *Node
	Errors []FileError
	Stats  Stats
}

// Warnings returns the files that carry no brief.
func (t *Tree) Warnings() []FileError {
	return t.errorsOfKind(KindNoBrief)
}

// HardErrors returns the files that could not be read.
func (t *Tree) HardErrors() []FileError {
	return t.errorsOfKind(KindUnreadable)
}

func (t *Tree) errorsOfKind(kind FileErrorKind) []FileError {
	var out []FileError
	for _, e := range t.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the node at the slash-separated relative path, or nil.
func (t *Tree) Find(path string) *Node {
	if t.Root == nil {
		return nil
	}
	if path == "" || path == "." {
		return t.Root
	}

	node := t.Root
	for _, part := range strings.Split(path, "/") {
		var next *Node
		for _, child := range node.Children {
			if child.Name == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// result is the outcome of extracting one file.
type result struct {
	relPath string
	brief   brief.Brief
	err     error
}

// assemble turns per-file results into a tree. Failed files go to the error
// list; directories end up in the tree only if something below them has a
// brief.
func assemble(rootName string, results []result) *Tree {
	t := &Tree{
		Root: &Node{Name: rootName, Path: ".", Dir: true},
	}

	for _, r := range results {
		t.Stats.FilesScanned++

		if r.err != nil {
			t.Errors = append(t.Errors, classify(r.relPath, r.err))
			continue
		}

		t.Stats.Briefs++
		insert(t.Root, r.relPath, r.brief)
	}

	for _, e := range t.Errors {
		switch e.Kind {
		case KindNoBrief:
			t.Stats.Missing++
		case KindUnreadable:
			t.Stats.Unreadable++
		}
	}

	sort.Slice(t.Errors, func(i, j int) bool {
		return t.Errors[i].Path < t.Errors[j].Path
	})
	sortNodes(t.Root)
	return t
}

func classify(relPath string, err error) FileError {
	fe := FileError{Path: relPath, Kind: KindUnreadable}

	f, ok := brief.AsFailure(err)
	if !ok {
		fe.Detail = err.Error()
		return fe
	}

	if f.Kind == brief.NoBriefFound {
		fe.Kind = KindNoBrief
		fe.Detail = "no " + brief.Tag + " comment within the scanned lines"
		return fe
	}
	if f.Err != nil {
		fe.Detail = f.Err.Error()
	}
	return fe
}

func insert(root *Node, relPath string, b brief.Brief) {
	parts := strings.Split(relPath, "/")
	node := root

	for i, part := range parts[:len(parts)-1] {
		node = child(node, part, strings.Join(parts[:i+1], "/"))
	}

	node.Children = append(node.Children, &Node{
		Name:    parts[len(parts)-1],
		Path:    relPath,
		Brief:   b.Text,
		Dialect: b.Dialect.String(),
		Line:    b.Line,
	})
}

func child(parent *Node, name, path string) *Node {
	for _, c := range parent.Children {
		if c.Dir && c.Name == name {
			return c
		}
	}
	c := &Node{Name: name, Path: path, Dir: true}
	parent.Children = append(parent.Children, c)
	return c
}

// sortNodes orders children directories first, then by name.
func sortNodes(n *Node) {
	sort.Slice(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Dir != b.Dir {
			return a.Dir
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		if c.Dir {
			sortNodes(c)
		}
	}
}
