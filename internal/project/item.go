package project

import "github.com/tacticalyash/IDEStudio/internal/models"

// Item is a node of the project tree: the project root, one of the three
// category nodes, or a file. Children are owned by their parent; the parent
// link is a plain back-reference.
type Item struct {
	label    string
	kind     models.ItemKind
	children []*Item
	parent   *Item
}

func newItem(label string, kind models.ItemKind, parent *Item) *Item {
	return &Item{label: label, kind: kind, parent: parent}
}

// Label returns the file name, category label or project name
func (i *Item) Label() string {
	return i.label
}

// Kind returns the node kind
func (i *Item) Kind() models.ItemKind {
	return i.kind
}

// Parent returns the owning node, or nil for the project root
func (i *Item) Parent() *Item {
	return i.parent
}

// ChildCount returns the number of direct children
func (i *Item) ChildCount() int {
	return len(i.children)
}

// ChildAt returns the child at index, or nil when out of range.
func (i *Item) ChildAt(index int) *Item {
	if index < 0 || index >= len(i.children) {
		return nil
	}
	return i.children[index]
}

// Row returns the position of the item within its parent.
func (i *Item) Row() int {
	if i.parent == nil {
		return 0
	}
	for idx, c := range i.parent.children {
		if c == i {
			return idx
		}
	}
	return 0
}

func (i *Item) insertAt(index int, child *Item) {
	i.children = append(i.children, nil)
	copy(i.children[index+1:], i.children[index:])
	i.children[index] = child
}

func (i *Item) labels() []string {
	out := make([]string, len(i.children))
	for idx, c := range i.children {
		out[idx] = c.label
	}
	return out
}
