// Package report folds tagged factsheets into a type → tag group → tag tree.
package report

import (
	"github.com/elliotchance/orderedmap"
)

// counter is the accumulator cell for one (type, group, tag) path.
type counter struct {
	size  int
	color string
}

// Build summarizes records into a tree rooted at RootName. Children appear in
// first-seen order. The color of a tag is the one seen on its first
// occurrence. Aggregated groups (per cfg) become a single Leaf holding the sum
// of their tag counts.
func Build(records []Record, cfg Config) *Group {
	types := orderedmap.NewOrderedMap()

	for _, rec := range records {
		groups := submap(types, rec.Type)
		for _, tag := range rec.Tags {
			if tag == nil || tag.TagGroup == nil {
				continue
			}
			tags := submap(groups, tag.TagGroup.Name)
			v, ok := tags.Get(tag.Name)
			if !ok {
				v = &counter{color: tag.Color}
				tags.Set(tag.Name, v)
			}
			v.(*counter).size++
		}
	}

	root := &Group{Name: RootName, Children: make([]Node, 0, types.Len())}
	for t := types.Front(); t != nil; t = t.Next() {
		groups := t.Value.(*orderedmap.OrderedMap)
		typeNode := &Group{Name: t.Key.(string), Children: make([]Node, 0, groups.Len())}
		for g := groups.Front(); g != nil; g = g.Next() {
			name := g.Key.(string)
			typeNode.Children = append(typeNode.Children, groupNode(name, g.Value.(*orderedmap.OrderedMap), cfg.IsAggregated(name)))
		}
		root.Children = append(root.Children, typeNode)
	}
	return root
}

func groupNode(name string, tags *orderedmap.OrderedMap, aggregated bool) Node {
	if aggregated {
		sum := 0
		for el := tags.Front(); el != nil; el = el.Next() {
			sum += el.Value.(*counter).size
		}
		return &Leaf{Name: name, Size: sum}
	}

	children := make([]Node, 0, tags.Len())
	for el := tags.Front(); el != nil; el = el.Next() {
		c := el.Value.(*counter)
		children = append(children, &Leaf{Name: el.Key.(string), Size: c.size, Color: c.color})
	}
	return &Group{Name: name, Children: children}
}

// submap returns the nested map stored under key, creating it on first use.
func submap(m *orderedmap.OrderedMap, key string) *orderedmap.OrderedMap {
	if v, ok := m.Get(key); ok {
		return v.(*orderedmap.OrderedMap)
	}
	child := orderedmap.NewOrderedMap()
	m.Set(key, child)
	return child
}

// Total sums the leaf sizes below n.
func Total(n Node) int {
	switch n := n.(type) {
	case *Leaf:
		return n.Size
	case *Group:
		sum := 0
		for _, c := range n.Children {
			sum += Total(c)
		}
		return sum
	}
	return 0
}
