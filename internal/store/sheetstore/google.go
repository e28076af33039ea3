package sheetstore

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewGoogle connects to a Google Sheets spreadsheet. credentialsFile is a
// service-account JSON key; when empty, application default credentials
// are used.
func NewGoogle(ctx context.Context, spreadsheetID, tab, credentialsFile string) (*Store, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheetstore: spreadsheet id is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheetstore: create sheets service: %w", err)
	}
	return newStore(&googleValues{values: svc.Spreadsheets.Values, spreadsheetID: spreadsheetID}, tab), nil
}

type googleValues struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
}

func (g *googleValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := g.values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleValues) Append(ctx context.Context, rng string, rows [][]any) error {
	_, err := g.values.Append(g.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (g *googleValues) Update(ctx context.Context, rng string, rows [][]any) error {
	_, err := g.values.Update(g.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
