package tablewriter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBasicTable(t *testing.T) {
	var buf strings.Builder
	table := NewWriter(&buf)
	table.SetHeader([]string{"TASK", "TOOL"})
	table.Append([]string{"build", "process-execute"})
	table.Append([]string{"publish", "file-write"})
	table.Render()

	expected := strings.Join([]string{
		"+---------+-----------------+",
		"| TASK    | TOOL            |",
		"+---------+-----------------+",
		"| build   | process-execute |",
		"| publish | file-write      |",
		"+---------+-----------------+",
		"",
	}, "\n")
	require.Equal(t, expected, buf.String())
}

func TestRenderEmptyTable(t *testing.T) {
	var buf strings.Builder
	NewWriter(&buf).Render()
	require.Empty(t, buf.String())
}

func TestRenderPadsShortRows(t *testing.T) {
	var buf strings.Builder
	table := NewWriter(&buf)
	table.SetHeader([]string{"A", "B"})
	table.Append([]string{"x"})
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, len(lines[1]), len(lines[3]))
}

func TestCellWidthIgnoresANSI(t *testing.T) {
	colored := "\x1b[36mbuild\x1b[0m"
	require.Equal(t, 5, cellWidth(colored))
	require.Equal(t, 5, cellWidth("build"))
}

func TestCellWidthWideRunes(t *testing.T) {
	require.Equal(t, 4, cellWidth("構築"))
}
