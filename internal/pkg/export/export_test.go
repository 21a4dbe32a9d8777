package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(rows int) Dataset {
	data := Dataset{Headers: []string{"Employee", "Date", "Time In"}}
	for i := 0; i < rows; i++ {
		data.Rows = append(data.Rows, map[string]string{
			"Employee": fmt.Sprintf("Employee %d", i),
			"Date":     "2025-01-05",
			"Time In":  "08:00",
		})
	}
	return data
}

func TestCSVExporter_Render(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(2))
	require.NoError(t, err)

	body := strings.TrimPrefix(string(out), "\ufeff")
	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Employee", "Date", "Time In"}, records[0])
	assert.Equal(t, []string{"Employee 1", "2025-01-05", "08:00"}, records[2])
}

func TestCSVExporter_MissingColumnIsEmpty(t *testing.T) {
	data := Dataset{Headers: []string{"A", "B"}, Rows: []map[string]string{{"A": "1"}}}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), "1,\n")
}

func TestExporters_RequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.ErrorIs(t, err, ErrNoHeaders)
	_, err = NewPDFExporter().Render(Dataset{}, "x", nil)
	assert.ErrorIs(t, err, ErrNoHeaders)
}

func TestPDFExporter_Render(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(120), "Attendance report", map[string]string{"Rows": "120"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporter_WideTable(t *testing.T) {
	data := Dataset{}
	row := map[string]string{}
	for i := 0; i < 8; i++ {
		h := fmt.Sprintf("Column %d", i)
		data.Headers = append(data.Headers, h)
		row[h] = strings.Repeat("long value ", 5)
	}
	data.Rows = []map[string]string{row}

	out, err := NewPDFExporter().Render(data, "", nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
