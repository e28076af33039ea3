package order

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var ErrInvalidLines = errors.New("invalid food items")

const (
	lineSep = ", "
	qtySep  = " x"
)

// FormatLines renders lines as the Food Items cell: "Samosa x3, Chai x2".
func FormatLines(lines []Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Item + qtySep + strconv.Itoa(l.Quantity)
	}
	return strings.Join(parts, lineSep)
}

// ParseLines is the inverse of FormatLines. The quantity is taken from the
// last " x" in each part, so item names may themselves contain " x".
func ParseLines(s string) ([]Line, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidLines)
	}

	parts := strings.Split(s, lineSep)
	lines := make([]Line, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		i := strings.LastIndex(p, qtySep)
		if i <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLines, p)
		}
		qty, err := strconv.Atoi(p[i+len(qtySep):])
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("%w: quantity in %q", ErrInvalidLines, p)
		}
		lines = append(lines, Line{Item: p[:i], Quantity: qty})
	}
	return lines, nil
}

// CheckLines reports an ErrInvalidLines error when lines would not read back
// unchanged from their Food Items cell.
func CheckLines(lines []Line) error {
	cell := FormatLines(lines)
	back, err := ParseLines(cell)
	if err != nil {
		return err
	}
	if !slices.Equal(back, lines) {
		return fmt.Errorf("%w: %q does not read back", ErrInvalidLines, cell)
	}
	return nil
}
