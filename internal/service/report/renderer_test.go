package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := &Renderer{now: func() time.Time { return time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC) }}

	rows := make([][]string, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, []string{"2026-01-15", "08:00", "12:00", "Início de Almoço", "04:00:00"})
	}

	out, err := r.Render(Table{
		Title:    "Work history",
		Subtitle: []string{"Ana Souza"},
		Header:   []string{"Date", "Check-in", "Check-out", "Reason", "Duration"},
		Rows:     rows,
		Footer:   []string{"Total: 320:00:00"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderer_EmptyTable(t *testing.T) {
	out, err := NewRenderer().Render(Table{Title: "Empty", Header: []string{"Date"}})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderer_RequiresColumns(t *testing.T) {
	_, err := NewRenderer().Render(Table{Title: "Broken"})
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "history-2026-01-16.pdf", Filename("history", "2026-01-16"))
	assert.Equal(t, "report-7-2026-01-01-2026-01-31.pdf", Filename("report", "7", "", "2026-01-01", "2026-01-31"))
}
