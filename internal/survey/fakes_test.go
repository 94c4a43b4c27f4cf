package survey

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"fieldsurvey/internal/reference"
	"fieldsurvey/pkg/types"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	objects []types.EvidenceObject
	fail    map[types.FieldName]error
}

func (m *memoryStore) Put(_ context.Context, obj types.EvidenceObject) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail[obj.Field]; err != nil {
		return "", err
	}

	m.objects = append(m.objects, obj)
	return "https://files.test/" + obj.FileName, nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type memoryAppender struct {
	rows      [][]string
	probeErr  error
	appendErr error
	probes    int
}

func (m *memoryAppender) Probe(context.Context) error {
	m.probes++
	return m.probeErr
}

func (m *memoryAppender) Append(_ context.Context, row []string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.rows = append(m.rows, row)
	return nil
}

func testAccounts() *reference.Store {
	return reference.New([]types.AccountRecord{
		{ID: "12345", Zone: "SOUTH", Circle: "CITY", Division: "EAST", SubDivision: "EAST-1"},
		{ID: "24680", Zone: "NORTH", Circle: "RURAL", Division: "WEST", SubDivision: "WEST-2"},
	})
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(2, 2, color.RGBA{G: 180, A: 255})

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
}
