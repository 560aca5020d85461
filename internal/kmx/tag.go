package kmx

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// TagType controls whether a tag is written self-closing or with a body.
type TagType int

const (
	// Container tags own an ordered list of children and are written with an
	// opening and a closing tag.
	Container TagType = iota
	// Leaf tags have no children and are written self-closing.
	Leaf
)

func (t TagType) String() string {
	if t == Leaf {
		return "leaf"
	}
	return "container"
}

var (
	// ErrLeafChildren is returned when adding a child to a leaf tag.
	ErrLeafChildren = errors.New("leaf tag cannot own children")

	// ErrInvalidName is returned for tag or property names the grammar cannot carry.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidValue is returned for property values the grammar cannot carry.
	ErrInvalidValue = errors.New("invalid property value")
)

// Property is a single name/value attribute of a tag.
type Property struct {
	Name  string
	Value string
}

// Tag is a named node holding uniquely named properties and, when it is a
// container, an ordered list of exclusively owned child tags.
type Tag struct {
	name       string
	properties map[string]string
	children   []*Tag
	parent     *Tag
	tagType    TagType
}

// NewTag creates an empty container tag.
func NewTag(name string) *Tag {
	return &Tag{
		name:       name,
		properties: make(map[string]string),
		tagType:    Container,
	}
}

// NewLeaf creates an empty leaf tag.
func NewLeaf(name string) *Tag {
	t := NewTag(name)
	t.tagType = Leaf
	return t
}

// Name returns the tag name
func (t *Tag) Name() string {
	return t.name
}

// Type returns whether the tag is a leaf or a container
func (t *Tag) Type() TagType {
	return t.tagType
}

// IsLeaf reports whether the tag is written self-closing
func (t *Tag) IsLeaf() bool {
	return t.tagType == Leaf
}

// SetType changes the tag shape. A tag that already owns children cannot
// become a leaf.
func (t *Tag) SetType(tagType TagType) error {
	if tagType == Leaf && len(t.children) > 0 {
		return fmt.Errorf("tag %s has %d children: %w", t.name, len(t.children), ErrLeafChildren)
	}
	t.tagType = tagType
	return nil
}

// Parent returns the tag owning t, or nil for a root tag.
func (t *Tag) Parent() *Tag {
	return t.parent
}

// InsertProperty adds a property unless one with the same name exists.
// It reports whether the property was inserted; an existing value is kept.
func (t *Tag) InsertProperty(p Property) bool {
	if _, exists := t.properties[p.Name]; exists {
		return false
	}
	t.properties[p.Name] = p.Value
	return true
}

// SetProperty adds or replaces a property.
func (t *Tag) SetProperty(name, value string) {
	t.properties[name] = value
}

// Property returns the value of the named property.
func (t *Tag) Property(name string) (string, bool) {
	v, ok := t.properties[name]
	return v, ok
}

// Properties returns the properties sorted by name.
func (t *Tag) Properties() []Property {
	props := make([]Property, 0, len(t.properties))
	for name, value := range t.properties {
		props = append(props, Property{Name: name, Value: value})
	}
	sort.Slice(props, func(i, j int) bool {
		return props[i].Name < props[j].Name
	})
	return props
}

// AddChild appends child to the tag's children. The tag takes ownership of
// child; a child that already has a parent is rejected.
func (t *Tag) AddChild(child *Tag) error {
	if child == nil {
		return fmt.Errorf("tag %s: nil child", t.name)
	}
	if t.tagType == Leaf {
		return fmt.Errorf("tag %s: %w", t.name, ErrLeafChildren)
	}
	if child.parent != nil {
		return fmt.Errorf("tag %s is already owned by %s", child.name, child.parent.name)
	}
	for p := t; p != nil; p = p.parent {
		if p == child {
			return fmt.Errorf("tag %s cannot own itself or an ancestor", child.name)
		}
	}
	child.parent = t
	t.children = append(t.children, child)
	return nil
}

// Children returns the child tags in insertion order.
func (t *Tag) Children() []*Tag {
	return t.children
}

// Child returns the first child with the given name.
func (t *Tag) Child(name string) *Tag {
	for _, c := range t.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Equal reports whether two trees have the same names, properties, shapes
// and child order.
func (t *Tag) Equal(other *Tag) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.name != other.name || t.tagType != other.tagType {
		return false
	}
	if len(t.properties) != len(other.properties) || len(t.children) != len(other.children) {
		return false
	}
	for name, value := range t.properties {
		if v, ok := other.properties[name]; !ok || v != value {
			return false
		}
	}
	for i := range t.children {
		if !t.children[i].Equal(other.children[i]) {
			return false
		}
	}
	return true
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, " \t\r\n<>/=\"")
}

// ValidValue reports whether value can be written as a property value.
func ValidValue(value string) bool {
	return !strings.ContainsAny(value, "\"\n\r")
}
