package kmx

import (
	"fmt"
	"io"
	"strings"
)

// SyntaxError reports malformed kmx input.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("kmx: line %d: %s", e.Line, e.Msg)
}

// Parse reads a single tag tree from r. Indentation and line breaks between
// tokens are not significant; the tag shape is taken from the syntax
// ("/>" for leaves, an explicit closing tag for containers).
func Parse(r io.Reader) (*Tag, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read kmx input: %w", err)
	}
	return ParseString(string(data))
}

// ParseString reads a single tag tree from s.
func ParseString(s string) (*Tag, error) {
	p := &parser{src: s, line: 1}
	p.skipSpace()
	tag, err := p.parseTag()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected content after root tag %s", tag.name)
	}
	return tag, nil
}

type parser struct {
	src  string
	pos  int
	line int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) advance(n int) {
	for i := 0; i < n && !p.eof(); i++ {
		if p.src[p.pos] == '\n' {
			p.line++
		}
		p.pos++
	}
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r', '\n':
			p.advance(1)
		default:
			return
		}
	}
}

func (p *parser) expect(s string) error {
	if !p.hasPrefix(s) {
		return p.errorf("expected %q", s)
	}
	p.advance(len(s))
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) readName() (string, error) {
	start := p.pos
	for !p.eof() && !strings.ContainsRune(" \t\r\n<>/=\"", rune(p.peek())) {
		p.advance(1)
	}
	if p.pos == start {
		return "", p.errorf("expected a name")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseTag() (*Tag, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	name, err := p.readName()
	if err != nil {
		return nil, err
	}
	tag := NewTag(name)

	for {
		p.skipSpace()
		switch {
		case p.eof():
			return nil, p.errorf("unterminated tag %s", name)
		case p.hasPrefix("/>"):
			p.advance(2)
			tag.tagType = Leaf
			return tag, nil
		case p.peek() == '>':
			p.advance(1)
			if err := p.parseChildren(tag); err != nil {
				return nil, err
			}
			return tag, nil
		default:
			if err := p.parseProperty(tag); err != nil {
				return nil, err
			}
		}
	}
}

func (p *parser) parseProperty(tag *Tag) error {
	name, err := p.readName()
	if err != nil {
		return err
	}
	p.skipSpace()
	if err := p.expect("="); err != nil {
		return err
	}
	p.skipSpace()
	if err := p.expect(`"`); err != nil {
		return err
	}
	end := strings.IndexAny(p.src[p.pos:], "\"\n")
	if end < 0 || p.src[p.pos+end] != '"' {
		return p.errorf("unterminated value for property %s", name)
	}
	value := p.src[p.pos : p.pos+end]
	p.advance(end + 1)

	if !tag.InsertProperty(Property{Name: name, Value: value}) {
		return p.errorf("duplicate property %s in tag %s", name, tag.name)
	}
	return nil
}

func (p *parser) parseChildren(tag *Tag) error {
	for {
		p.skipSpace()
		switch {
		case p.eof():
			return p.errorf("missing closing tag for %s", tag.name)
		case p.hasPrefix("</"):
			p.advance(2)
			name, err := p.readName()
			if err != nil {
				return err
			}
			if name != tag.name {
				return p.errorf("closing tag %s does not match %s", name, tag.name)
			}
			p.skipSpace()
			return p.expect(">")
		case p.peek() == '<':
			child, err := p.parseTag()
			if err != nil {
				return err
			}
			if err := tag.AddChild(child); err != nil {
				return p.errorf("%v", err)
			}
		default:
			return p.errorf("unexpected character %q in tag %s", p.peek(), tag.name)
		}
	}
}
