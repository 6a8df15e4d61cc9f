package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"singil/internal/export"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Destination appends rendered report tables to a Google spreadsheet, one
// sheet per department export.
type Destination struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates a Sheets destination using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_EXPORT_SHEET_NAME (default "Exports")
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Destination, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_EXPORT_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Exports"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Destination{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		// No service account: fall back to a user token minted by
		// cmd/oauth-init.
		ts, err := oauthTokenSource(ctx)
		if err != nil {
			return nil, err
		}
		service, err := gsheet.NewService(ctx, goption.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// oauthTokenSource builds a token source from the OAuth client config and
// the token file written by cmd/oauth-init.
func oauthTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or an OAuth client)")
	}

	cfg, err := oauthgoogle.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	if tokenFile == "" {
		tokenFile = "token.json"
	}
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file (run oauth-init first): %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	return cfg.TokenSource(ctx, &tok), nil
}

// Append writes a table under the next empty row of the export sheet:
// title, header, body, grand-total, then a blank spacer row.
func (d *Destination) Append(ctx context.Context, t export.Table) error {
	if d.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", d.sheetName)
	resp, err := d.svc.Spreadsheets.Values.Get(d.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet dimensions for %s: %w", d.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	values := [][]any{{t.Title}}
	values = append(values, rowToAny(t.Columns))
	for _, r := range t.Rows {
		values = append(values, rowToAny(r))
	}
	if t.HasTotal && len(t.Columns) > 0 {
		total := make([]any, len(t.Columns))
		total[0] = "Grand Total"
		total[len(total)-1] = t.GrandTotal.Format()
		values = append(values, total)
	}
	values = append(values, []any{""})

	dataRange := fmt.Sprintf("%s!A%d", d.sheetName, nextRow)
	vr := &gsheet.ValueRange{Values: values}

	_, err = d.svc.Spreadsheets.Values.Update(d.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", d.sheetName, err)
	}

	slog.InfoContext(ctx, "Appended export table to spreadsheet",
		"sheet", d.sheetName,
		"title", t.Title,
		"rows", len(t.Rows),
		"start_row", nextRow)

	return nil
}

func rowToAny(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
