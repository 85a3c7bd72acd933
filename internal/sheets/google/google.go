// Package google exports the ledger to a Google Sheets tab using a service
// account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"agenda/internal/log"
	"agenda/internal/sheets"
)

// Options configures the client. Exactly one of CredentialsJSON or
// CredentialsFile is normally set; ClientOptions overrides both.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	ClientOptions   []option.ClientOption
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ sheets.LedgerWriter = (*Client)(nil)

func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	clientOpts := opts.ClientOptions
	if len(clientOpts) == 0 {
		creds, err := credentials(opts)
		if err != nil {
			return nil, err
		}
		clientOpts = []option.ClientOption{
			option.WithCredentialsJSON(creds),
			option.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func credentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case opts.CredentialsFile != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// WriteLedger clears the tab and writes the ledger rows from A1.
func (c *Client) WriteLedger(ctx context.Context, l sheets.Ledger) error {
	if _, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, c.sheetName, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", c.sheetName, err)
	}

	rows := l.Rows()
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	rng := fmt.Sprintf("%s!A1", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Ledger exported",
		"sheet", c.sheetName, log.FieldCount, len(l.Transactions))
	return nil
}
