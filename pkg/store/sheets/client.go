// Package sheets implements the spreadsheet backend on the Google Sheets
// API. One tab per entity kind, header row first, all cells stored RAW.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient defines the spreadsheet operations the store needs.
// Satisfied by Client; tests substitute a fake.
type SheetsClient interface {
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	AppendRow(spreadsheetID, sheetRange string, row []interface{}) error
	UpdateRange(spreadsheetID, sheetRange string, values [][]interface{}) error
	ClearRange(spreadsheetID, sheetRange string) error
}

// Client wraps the Google Sheets API client.
type Client struct {
	service *sheets.Service
}

// NewClient creates a Sheets client authenticated as a service account.
// privateKey may carry literal "\n" escapes (as pasted from a JSON key);
// they are unescaped before use.
func NewClient(ctx context.Context, serviceAccountEmail, privateKey string) (*Client, error) {
	cfg := &jwt.Config{
		Email:      serviceAccountEmail,
		PrivateKey: []byte(strings.ReplaceAll(privateKey, `\n`, "\n")),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{service: service}, nil
}

// Service returns the underlying sheets service for direct API access.
func (c *Client) Service() *sheets.Service {
	return c.service
}

// GetValues reads values from a spreadsheet range.
func (c *Client) GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, sheetRange).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get values: %w", err)
	}

	return resp.Values, nil
}

// AppendRow appends a single row to the end of a sheet.
func (c *Client) AppendRow(spreadsheetID, sheetRange string, row []interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, sheetRange, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}

	return nil
}

// UpdateRange overwrites cells starting at the given range.
func (c *Client) UpdateRange(spreadsheetID, sheetRange string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, sheetRange, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range: %w", err)
	}

	return nil
}

// ClearRange clears every cell in the given range.
func (c *Client) ClearRange(spreadsheetID, sheetRange string) error {
	_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, sheetRange, &sheets.ClearValuesRequest{}).Do()
	if err != nil {
		return fmt.Errorf("failed to clear range: %w", err)
	}

	return nil
}
