package wire

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// parser walks the compact textual forms used for coordinates and
// dimension-range queries.
type parser struct {
	s   string
	pos int
}

func (p *parser) done() bool { return p.pos >= len(p.s) }

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d in %q: %s", ErrInvalidQuery, p.pos, p.s, fmt.Sprintf(format, args...))
}

func (p *parser) dimension() (Dimension, error) {
	if p.done() {
		return 0, p.errorf("expected dimension")
	}
	r, size := utf8.DecodeRuneInString(p.s[p.pos:])
	if !isLetter(r) {
		return 0, p.errorf("expected dimension letter, got %q", r)
	}
	p.pos += size
	return Dimension(r), nil
}

func (p *parser) integer() (int32, error) {
	start := p.pos
	if !p.done() && (p.s[p.pos] == '-' || p.s[p.pos] == '+') {
		p.pos++
	}
	digits := p.pos
	for !p.done() && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == digits {
		return 0, p.errorf("expected integer")
	}
	v, err := strconv.ParseInt(p.s[start:p.pos], 10, 32)
	if err != nil {
		return 0, p.errorf("%v", err)
	}
	return int32(v), nil
}

func (p *parser) expect(c byte) error {
	if p.done() || p.s[p.pos] != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}
