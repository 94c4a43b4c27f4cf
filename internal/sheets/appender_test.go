package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type fakeSheets struct {
	appended    [][]interface{}
	valueOption string
	insertMode  string
	status      int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad range"}}`))
		return
	}

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appended = append(f.appended, vr.Values...)
		f.valueOption = r.URL.Query().Get("valueInputOption")
		f.insertMode = r.URL.Query().Get("insertDataOption")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-id",
			"updates":       map[string]any{"updatedRows": len(vr.Values)},
		})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sheets": []map[string]any{
				{"properties": map[string]any{"title": "Survey Data"}},
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestAppender(t *testing.T, fake *fakeSheets, sheetName string) *Appender {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	return NewAppender(svc, "sheet-id", sheetName)
}

func TestAppender_Append(t *testing.T) {
	fake := &fakeSheets{}
	a := newTestAppender(t, fake, "Survey Data")

	row := []string{"012345", "OK", "", "https://files.test/x.jpg"}
	require.NoError(t, a.Append(context.Background(), row))

	require.Len(t, fake.appended, 1)
	assert.Equal(t, []interface{}{"012345", "OK", "", "https://files.test/x.jpg"}, fake.appended[0])
	assert.Equal(t, "RAW", fake.valueOption)
	assert.Equal(t, "INSERT_ROWS", fake.insertMode)
}

func TestAppender_AppendError(t *testing.T) {
	a := newTestAppender(t, &fakeSheets{status: http.StatusBadRequest}, "Survey Data")

	err := a.Append(context.Background(), []string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append row to Survey Data")
}

func TestAppender_Probe(t *testing.T) {
	ok := newTestAppender(t, &fakeSheets{}, "Survey Data")
	assert.NoError(t, ok.Probe(context.Background()))

	missing := newTestAppender(t, &fakeSheets{}, "Sheet9")
	err := missing.Probe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no sheet named "Sheet9"`)
}

func TestAppender_A1(t *testing.T) {
	a := NewAppender(nil, "id", "Tech's Sheet")
	assert.Equal(t, "'Tech''s Sheet'!A1", a.A1())
}
