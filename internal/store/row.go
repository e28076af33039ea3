package store

import (
	"fmt"
	"strings"

	"github.com/dhiya-foods/orderboard/internal/money"
	"github.com/dhiya-foods/orderboard/internal/order"
)

// Columns is the header of the order medium, in order.
var Columns = []string{"Order No", "Date", "Time", "Day", "Food Items", "Total", "Status"}

// Column positions within a row.
const (
	ColOrderNo = iota
	ColDate
	ColTime
	ColDay
	ColFoodItems
	ColTotal
	ColStatus
)

// EncodeRow renders rec as a medium row.
func EncodeRow(rec order.Record) []string {
	return []string{
		rec.ID,
		rec.CreatedAt.Date,
		rec.CreatedAt.Time,
		rec.CreatedAt.Day,
		order.FormatLines(rec.Lines),
		rec.Total.String(),
		string(rec.Status),
	}
}

// DecodeRow parses a medium row. An unknown status yields an error wrapping
// order.ErrUnrecognizedStatus; any other malformed cell yields ErrCorruptRow.
func DecodeRow(row []string) (order.Record, error) {
	if len(row) < len(Columns) {
		return order.Record{}, fmt.Errorf("%w: %d cells, want %d", ErrCorruptRow, len(row), len(Columns))
	}

	id := strings.TrimSpace(row[ColOrderNo])
	if id == "" {
		return order.Record{}, fmt.Errorf("%w: empty order no", ErrCorruptRow)
	}

	status, err := order.ParseStatus(strings.TrimSpace(row[ColStatus]))
	if err != nil {
		return order.Record{}, fmt.Errorf("order %s: %w", id, err)
	}

	lines, err := order.ParseLines(row[ColFoodItems])
	if err != nil {
		return order.Record{}, fmt.Errorf("%w: order %s: %w", ErrCorruptRow, id, err)
	}

	total, err := money.Parse(row[ColTotal])
	if err != nil {
		return order.Record{}, fmt.Errorf("%w: order %s: total: %w", ErrCorruptRow, id, err)
	}

	return order.Record{
		ID: id,
		CreatedAt: order.CreatedAt{
			Date: strings.TrimSpace(row[ColDate]),
			Time: strings.TrimSpace(row[ColTime]),
			Day:  strings.TrimSpace(row[ColDay]),
		},
		Lines:  lines,
		Total:  total,
		Status: status,
	}, nil
}

// CheckHeader verifies a header row matches Columns.
func CheckHeader(row []string) error {
	if len(row) < len(Columns) {
		return fmt.Errorf("%w: header has %d columns, want %v", ErrCorruptRow, len(row), Columns)
	}
	for i, c := range Columns {
		if strings.TrimSpace(strings.TrimPrefix(row[i], "\ufeff")) != c {
			return fmt.Errorf("%w: header column %d is %q, want %q", ErrCorruptRow, i, row[i], c)
		}
	}
	return nil
}
