package report

import "encoding/json"

// RootName is the name of the node every report tree hangs from.
const RootName = "root"

// TagGroup is the category a tag belongs to.
type TagGroup struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Tag is a colored label attached to a factsheet.
type Tag struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	TagGroup *TagGroup `json:"tagGroup"`
}

// Record is a typed factsheet with its tags. A nil entry in Tags, or a tag
// without a group, is ignored by Build.
type Record struct {
	Type string `json:"type"`
	Tags []*Tag `json:"tags"`
}

// GroupConfig controls how one tag group is summarized.
type GroupConfig struct {
	Aggregated bool `yaml:"aggregated" json:"aggregated"`
}

// Config maps tag group names to their report settings.
type Config map[string]GroupConfig

// IsAggregated reports whether the named group collapses into a single size.
// Unconfigured groups are not aggregated.
func (c Config) IsAggregated(group string) bool {
	return c[group].Aggregated
}

// Node is either a *Group or a *Leaf.
type Node interface {
	NodeName() string
	node()
}

// Group is a node with children: the root, a factsheet type, or a
// non-aggregated tag group.
type Group struct {
	Name     string
	Children []Node
}

// Leaf carries a count: a tag, or an aggregated tag group (no color).
type Leaf struct {
	Name  string
	Size  int
	Color string
}

func (g *Group) NodeName() string { return g.Name }
func (l *Leaf) NodeName() string  { return l.Name }

func (*Group) node() {}
func (*Leaf) node()  {}

// Child returns the direct child with the given name.
func (g *Group) Child(name string) (Node, bool) {
	for _, c := range g.Children {
		if c.NodeName() == name {
			return c, true
		}
	}
	return nil, false
}

type groupJSON struct {
	Name     string `json:"name"`
	Children []Node `json:"children"`
}

type leafJSON struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Color string `json:"color,omitempty"`
}

// MarshalJSON always emits children, as an empty array when there are none.
func (g Group) MarshalJSON() ([]byte, error) {
	children := g.Children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(groupJSON{Name: g.Name, Children: children})
}

func (l Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(leafJSON(l))
}
