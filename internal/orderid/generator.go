// Package orderid draws short human-readable order codes. Codes are random,
// not unique: the order store rejects collisions and the caller redraws.
package orderid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// Alphabet is the set of characters an order code is drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength matches the 6-character codes printed on tickets.
const DefaultLength = 6

// Bytes >= cutoff are rejected so every symbol is equally likely.
const cutoff = 256 - 256%len(Alphabet)

var ErrInvalidLength = errors.New("order id length must be > 0")

// Generator produces fixed-length codes from a random byte stream.
type Generator struct {
	length int
	rand   io.Reader
}

// New returns a generator backed by crypto/rand.
func New(length int) *Generator {
	return NewWithReader(length, rand.Reader)
}

// NewWithReader returns a generator that draws from r.
func NewWithReader(length int, r io.Reader) *Generator {
	return &Generator{length: length, rand: r}
}

// Length reports the code length.
func (g *Generator) Length() int { return g.length }

// Next returns a fresh code.
func (g *Generator) Next() (string, error) {
	if g.length <= 0 {
		return "", ErrInvalidLength
	}

	out := make([]byte, 0, g.length)
	buf := make([]byte, g.length*2)
	for len(out) < g.length {
		n, err := g.rand.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf[:n] {
			if int(b) >= cutoff {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == g.length {
				break
			}
		}
	}
	return string(out), nil
}

// Valid reports whether s looks like a code of the given length.
func Valid(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
