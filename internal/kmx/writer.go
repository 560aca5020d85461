package kmx

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// DefaultIndent is the number of spaces per nesting level.
const DefaultIndent = 2

// Encoder writes tag trees in the kmx text format.
//
// A tag at depth d is written as
//
//	<pad d*s>'<'NAME { '\n' <pad (d+1)*s> PNAME ' = "' PVALUE '"' } ( '/>' | '>' '\n' CHILDREN <pad d*s> '</' NAME '>' ) '\n'
//
// with properties sorted by name and children in insertion order.
type Encoder struct {
	w      *bufio.Writer
	indent int
}

// NewEncoder returns an encoder writing to w with indent spaces per level.
// A non-positive indent writes everything flush left.
func NewEncoder(w io.Writer, indent int) *Encoder {
	if indent < 0 {
		indent = 0
	}
	return &Encoder{w: bufio.NewWriter(w), indent: indent}
}

// Encode writes the tree rooted at t at depth zero and flushes the output.
func (e *Encoder) Encode(t *Tag) error {
	return e.EncodeAt(t, 0)
}

// EncodeAt writes the tree rooted at t starting at the given depth.
func (e *Encoder) EncodeAt(t *Tag, depth int) error {
	if t == nil {
		return fmt.Errorf("encode: nil tag")
	}
	if err := e.writeTag(t, depth); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *Encoder) writeTag(t *Tag, depth int) error {
	if !validName(t.name) {
		return fmt.Errorf("tag %q: %w", t.name, ErrInvalidName)
	}

	pad := strings.Repeat(" ", depth*e.indent)
	propPad := strings.Repeat(" ", (depth+1)*e.indent)

	e.w.WriteString(pad)
	e.w.WriteByte('<')
	e.w.WriteString(t.name)

	for _, p := range t.Properties() {
		if !validName(p.Name) {
			return fmt.Errorf("tag %s property %q: %w", t.name, p.Name, ErrInvalidName)
		}
		if !ValidValue(p.Value) {
			return fmt.Errorf("tag %s property %s: %w", t.name, p.Name, ErrInvalidValue)
		}
		e.w.WriteByte('\n')
		e.w.WriteString(propPad)
		e.w.WriteString(p.Name)
		e.w.WriteString(` = "`)
		e.w.WriteString(p.Value)
		e.w.WriteByte('"')
	}

	if t.tagType == Leaf {
		e.w.WriteString("/>")
	} else {
		e.w.WriteString(">\n")
		for _, child := range t.children {
			if err := e.writeTag(child, depth+1); err != nil {
				return err
			}
		}
		e.w.WriteString(pad)
		e.w.WriteString("</")
		e.w.WriteString(t.name)
		e.w.WriteByte('>')
	}

	_, err := e.w.WriteString("\n")
	return err
}

// Marshal returns the encoded form of the tree rooted at t.
func Marshal(t *Tag, indent int) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf, indent).Encode(t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns the encoded form of the tree with the default indent, or
// an empty string if the tree cannot be encoded.
func (t *Tag) String() string {
	data, err := Marshal(t, DefaultIndent)
	if err != nil {
		return ""
	}
	return string(data)
}
