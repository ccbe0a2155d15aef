package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// PathSeparator joins node names in flattened paths.
const PathSeparator = "::"

// RenderOptions controls text rendering.
type RenderOptions struct {
	// Color enables ANSI output; tag colors given as #rrggbb are shown as swatches.
	Color bool
	// Indent is repeated once per level. Defaults to two spaces.
	Indent string
}

// Render writes root as an indented text tree. The root itself is not printed.
func Render(w io.Writer, root *Group, opts RenderOptions) error {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	r := &renderer{w: w, opts: opts}
	for _, c := range root.Children {
		r.node(c, 0)
	}
	return r.err
}

type renderer struct {
	w    io.Writer
	opts RenderOptions
	err  error
}

func (r *renderer) node(n Node, depth int) {
	if r.err != nil {
		return
	}
	prefix := strings.Repeat(r.opts.Indent, depth)
	switch n := n.(type) {
	case *Group:
		style := color.New(color.Bold)
		if depth == 0 {
			style = color.New(color.Bold, color.FgCyan)
		}
		r.printf("%s%s (%d)\n", prefix, r.paint(style, n.Name), Total(n))
		for _, c := range n.Children {
			r.node(c, depth+1)
		}
	case *Leaf:
		line := fmt.Sprintf("%s%s: %d", prefix, n.Name, n.Size)
		if n.Color != "" {
			line += " " + r.swatch(n.Color)
		}
		r.printf("%s\n", line)
	}
}

func (r *renderer) printf(format string, args ...any) {
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *renderer) paint(c *color.Color, s string) string {
	if !r.opts.Color {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

func (r *renderer) swatch(hex string) string {
	red, green, blue, ok := parseHex(hex)
	if !r.opts.Color || !ok {
		return hex
	}
	return r.paint(color.BgRGB(red, green, blue), "  ") + " " + hex
}

func parseHex(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

// PathEntry is one leaf of a tree with its full path.
type PathEntry struct {
	Path  string `json:"path"`
	Size  int    `json:"size"`
	Color string `json:"color,omitempty"`
}

// Paths flattens root into type::group::tag entries, in tree order.
// Aggregated groups flatten to type::group.
func Paths(root *Group) []PathEntry {
	var out []PathEntry
	var walk func(n Node, parents []string)
	walk = func(n Node, parents []string) {
		path := append(parents[:len(parents):len(parents)], n.NodeName())
		switch n := n.(type) {
		case *Leaf:
			out = append(out, PathEntry{Path: strings.Join(path, PathSeparator), Size: n.Size, Color: n.Color})
		case *Group:
			for _, c := range n.Children {
				walk(c, path)
			}
		}
	}
	for _, c := range root.Children {
		walk(c, nil)
	}
	return out
}
