// Package parser parses the canonical string forms of temporal values: ISO
// 8601 calendar dates and times, RFC 3339 offsets, RFC 9557 bracketed time
// zone and key/value annotations, and designated duration notation.
//
// The parser reports only what was written. It checks the shape of the input
// and the width of each field but not whether, say, a month is between 1 and
// 12; callers validate the parsed fields when constructing values, which lets
// them distinguish syntax errors ([ErrSyntax]) from values out of range.
package parser

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSyntax wraps errors for malformed input.
	ErrSyntax = errors.New("syntax")

	// ErrRange wraps errors for numbers too large to represent.
	ErrRange = errors.New("out of range")
)

// cursor tracks the position of the lexer in src.
type cursor struct {
	src string
	pos int
}

func newCursor(src string) *cursor {
	return &cursor{src: src}
}

// errorf returns an ErrSyntax error describing the current position.
func (c *cursor) errorf(format string, args ...any) error {
	return fmt.Errorf(
		"%w: %v at position %d in %q",
		ErrSyntax, fmt.Sprintf(format, args...), c.pos, c.src,
	)
}

// rangeErrorf returns an ErrRange error describing the current position.
func (c *cursor) rangeErrorf(format string, args ...any) error {
	return fmt.Errorf(
		"%w: %v at position %d in %q",
		ErrRange, fmt.Sprintf(format, args...), c.pos, c.src,
	)
}

func (c *cursor) eof() bool { return c.pos >= len(c.src) }

// peek returns the next byte without consuming it, or 0 at the end of input.
func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}

// accept consumes the next byte if it is one of chars.
func (c *cursor) accept(chars string) (byte, bool) {
	if c.eof() {
		return 0, false
	}
	ch := c.src[c.pos]
	for i := range len(chars) {
		if chars[i] == ch {
			c.pos++
			return ch, true
		}
	}
	return 0, false
}

// expect consumes ch or returns an error.
func (c *cursor) expect(ch byte, what string) error {
	if c.peek() != ch {
		if c.eof() {
			return c.errorf("expected %v but reached end of input", what)
		}
		return c.errorf("expected %v but found %q", what, c.peek())
	}
	c.pos++
	return nil
}

// done returns an error if any input remains.
func (c *cursor) done() error {
	if !c.eof() {
		return c.errorf("unexpected trailing input %q", c.src[c.pos:])
	}
	return nil
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

// fixed parses exactly n digits.
func (c *cursor) fixed(n int, what string) (int, error) {
	if c.pos+n > len(c.src) {
		return 0, c.errorf("expected %d-digit %v", n, what)
	}
	val := 0
	for i := range n {
		ch := c.src[c.pos+i]
		if !isDigit(ch) {
			c.pos += i
			return 0, c.errorf("expected %d-digit %v", n, what)
		}
		val = val*10 + int(ch-'0')
	}
	c.pos += n
	return val, nil
}

// integer parses one or more digits into an int64, reporting ErrRange on
// overflow.
func (c *cursor) integer(what string) (int64, error) {
	start := c.pos
	var val int64
	for !c.eof() && isDigit(c.peek()) {
		d := int64(c.peek() - '0')
		if val > (math.MaxInt64-d)/10 {
			return 0, c.rangeErrorf("%v too large", what)
		}
		val = val*10 + d
		c.pos++
	}
	if c.pos == start {
		return 0, c.errorf("expected %v", what)
	}
	return val, nil
}

// fraction parses the digits following a decimal mark and returns them scaled
// to nanoseconds. One to nine digits are allowed.
func (c *cursor) fraction() (int64, error) {
	start := c.pos
	var val int64
	for !c.eof() && isDigit(c.peek()) {
		if c.pos-start == 9 {
			return 0, c.errorf("fraction exceeds nanosecond precision")
		}
		val = val*10 + int64(c.peek()-'0')
		c.pos++
	}
	n := c.pos - start
	if n == 0 {
		return 0, c.errorf("expected fractional digits")
	}
	for ; n < 9; n++ {
		val *= 10
	}
	return val, nil
}
