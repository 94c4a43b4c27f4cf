// Package sheets appends survey rows to a Google Sheets tab.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// Appender writes rows at the end of one tab of a spreadsheet.
type Appender struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewAppender(svc *sheets.Service, spreadsheetID, sheetName string) *Appender {
	return &Appender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
}

// A1 returns the quoted range anchoring appends to the tab.
func (a *Appender) A1() string {
	return fmt.Sprintf("'%s'!A1", strings.ReplaceAll(a.sheetName, "'", "''"))
}

// Probe reads the spreadsheet metadata and checks the tab exists. It fails
// fast on credential, sharing and connectivity problems without writing.
func (a *Appender) Probe(ctx context.Context) error {
	ss, err := a.svc.Spreadsheets.Get(a.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", a.spreadsheetID, err)
	}

	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == a.sheetName {
			return nil
		}
	}

	return fmt.Errorf("spreadsheet %s has no sheet named %q", a.spreadsheetID, a.sheetName)
}

// Append writes row as a single new row. Values are stored raw so account
// ids and mobiles keep their leading zeros.
func (a *Appender) Append(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}

	resp, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, a.A1(), &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]interface{}{cells},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", a.sheetName, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRows != 1 {
		return fmt.Errorf("append row to %s: %d rows updated", a.sheetName, resp.Updates.UpdatedRows)
	}

	return nil
}
