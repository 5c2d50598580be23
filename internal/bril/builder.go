package bril

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ParseInstr builds an instruction from a field list such as
//
//	op = add, args = [a, b], dest = sum
//
// Fields are op (required), args, ty, value and dest; commas between fields
// are optional. Unknown or repeated fields are errors, and so is a field
// combination that the operation does not accept.
func ParseInstr(src string) (Instr, error) {
	p := fieldParser{src: src}
	var (
		in   Instr
		seen = make(map[string]bool, 5)
	)
	p.skipSeparators()
	if p.eof() {
		return Instr{}, errors.New("expected at least an 'op' field")
	}
	for !p.eof() {
		key := p.ident()
		if key == "" {
			return Instr{}, fmt.Errorf("offset %d: expected field name", p.pos)
		}
		p.skipSpaces()
		if !p.consume('=') {
			return Instr{}, fmt.Errorf("field %s: expected '='", key)
		}
		p.skipSpaces()
		if seen[key] {
			return Instr{}, fmt.Errorf("%s already set", key)
		}
		seen[key] = true

		switch key {
		case "op":
			op, err := ParseOp(p.word())
			if err != nil {
				return Instr{}, err
			}
			in.Op = op
		case "args":
			args, err := p.list()
			if err != nil {
				return Instr{}, err
			}
			in.Args = args
		case "ty":
			ty, err := ParseType(p.word())
			if err != nil {
				return Instr{}, err
			}
			in.Type = ty
		case "value":
			v, err := parseValue(p.word())
			if err != nil {
				return Instr{}, err
			}
			in.Value, in.HasValue = v, true
		case "dest":
			d := p.word()
			if d == "" {
				return Instr{}, errors.New("dest: expected variable name")
			}
			in.Dest = normName(d)
		default:
			return Instr{}, fmt.Errorf("unknown field %q", key)
		}
		p.skipSeparators()
	}
	if !seen["op"] {
		return Instr{}, errors.New("expected at least an 'op' field")
	}
	if !in.Valid() {
		return Instr{}, fmt.Errorf("invalid field combination for %s: %s", in.Op, Format(in))
	}
	return in, nil
}

// MustInstr is like ParseInstr but panics on error. Intended for fixtures.
func MustInstr(src string) Instr {
	in, err := ParseInstr(src)
	if err != nil {
		panic(fmt.Sprintf("bril.MustInstr(%q): %v", src, err))
	}
	return in
}

// MustBlock parses one instruction per argument.
func MustBlock(srcs ...string) Block {
	b := make(Block, len(srcs))
	for i, s := range srcs {
		b[i] = MustInstr(s)
	}
	return b
}

type fieldParser struct {
	src string
	pos int
}

func (p *fieldParser) eof() bool { return p.pos >= len(p.src) }

func (p *fieldParser) peek() byte { return p.src[p.pos] }

func (p *fieldParser) consume(c byte) bool {
	if !p.eof() && p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *fieldParser) skipSpaces() {
	for !p.eof() && unicode.IsSpace(rune(p.peek())) {
		p.pos++
	}
}

func (p *fieldParser) skipSeparators() {
	for !p.eof() && (unicode.IsSpace(rune(p.peek())) || p.peek() == ',') {
		p.pos++
	}
}

func (p *fieldParser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c != '_' && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// word reads up to the next separator or bracket.
func (p *fieldParser) word() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == ',' || c == '[' || c == ']' || c == '=' || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *fieldParser) list() ([]Var, error) {
	if !p.consume('[') {
		return nil, errors.New("args: expected '['")
	}
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return nil, errors.New("args: unclosed '['")
	}
	body := p.src[p.pos : p.pos+end]
	p.pos += end + 1

	var out []Var
	for _, part := range strings.Split(body, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if strings.ContainsFunc(name, unicode.IsSpace) {
			return nil, fmt.Errorf("args: expected ',' between %q", name)
		}
		out = append(out, normName(name))
	}
	return out, nil
}
