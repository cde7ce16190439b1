package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tempo/internal/config"
	ports "tempo/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors timesheet entries to a Google spreadsheet. Rows land on a
// year-prefixed sheet so each year gets its own tab.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.EntryAppender = (*Client)(nil)

// NewFromConfig creates a Sheets client using service-account credentials from
// the configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing Google spreadsheet id")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     yearPrefixedName(cfg.GoogleSheetName, time.Now().Year()),
	}, nil
}

func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	var credentialsJSON []byte

	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// AppendEntry writes one timesheet row to the mirror sheet. Columns:
// date, project, task, activity, hours, overtime, description.
func (c *Client) AppendEntry(ctx context.Context, e ports.Entry) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	var overtime any
	if e.Overtime.Valid {
		overtime = e.Overtime.Hours
	} else {
		overtime = ""
	}

	vr := &gsheet.ValueRange{Values: [][]any{{
		e.Date.String(),
		e.Project,
		e.Task,
		e.Activity,
		e.Hours,
		overtime,
		e.Description,
	}}}

	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Entry appended to sheet",
		"sheet", c.sheetName,
		"range", ref,
		"project", e.Project,
		"date", e.Date.String())

	return ref, nil
}

// yearPrefixedName joins the year with the base sheet name, e.g. "2026 Timesheet".
func yearPrefixedName(base string, year int) string {
	if base == "" {
		base = "Timesheet"
	}
	return fmt.Sprintf("%d %s", year, base)
}
