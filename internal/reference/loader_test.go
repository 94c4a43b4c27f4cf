package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.csv")
	content := "\ufeffACCOUNT ID,ZONE,CIRCLE,DIVISION,SUB-DIVISION\n" +
		"12345,SOUTH,CITY,EAST,EAST-1\n" +
		",NORTH,RURAL,WEST,WEST-2\n" +
		"ABC,NORTH,RURAL,WEST,WEST-2\n" +
		"67890.0,NORTH,RURAL,WEST\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store, result, err := LoadFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 2, result.Skipped)

	rec, err := store.Lookup("67890")
	require.NoError(t, err)
	assert.Equal(t, "WEST", rec.Division)
	assert.Empty(t, rec.SubDivision)
}

func TestLoadFile_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Account_ID", "Zone", "Circle", "Division", "Sub Division"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{12345, "SOUTH", "CITY", "EAST", "EAST-1"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"55555", "NORTH", "RURAL", "WEST", "WEST-2"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	store, result, err := LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 2, store.Len())

	rec, err := store.Lookup("12345")
	require.NoError(t, err)
	assert.Equal(t, "EAST-1", rec.SubDivision)
}

func TestParseRows_MissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		wantErr string
	}{
		{name: "empty", rows: nil, wantErr: "empty"},
		{name: "no id", rows: [][]string{{"ZONE", "CIRCLE", "DIVISION", "SUB-DIVISION"}}, wantErr: "account id"},
		{name: "no circle", rows: [][]string{{"ID", "ZONE", "DIVISION", "SUB-DIVISION"}}, wantErr: "CIRCLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRows(tt.rows)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRows_DuplicateIDsFirstWins(t *testing.T) {
	rows := [][]string{
		{"ACCOUNT ID", "ZONE", "CIRCLE", "DIVISION", "SUB-DIVISION"},
		{"12345", "SOUTH", "A", "B", "C"},
		{"12345.0", "NORTH", "X", "Y", "Z"},
		{"67890", "EAST", "D", "E", "F"},
		{"67890", "WEST", "G", "H", "I"},
	}

	result, err := ParseRows(rows)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 2, result.Duplicates)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, "12345", result.Records[0].ID)
	assert.Equal(t, "SOUTH", result.Records[0].Zone)
	assert.Equal(t, "67890", result.Records[1].ID)
	assert.Equal(t, "EAST", result.Records[1].Zone)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, _, err := LoadFile(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
