package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scythe504/colortrap-backend/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		in      int
		minutes string
		seconds string
	}{
		{0, "00", "00"},
		{9, "00", "09"},
		{75, "01", "15"},
		{600, "10", "00"},
		{-3, "00", "00"},
	}
	for _, tc := range cases {
		m, s := FormatElapsed(tc.in)
		assert.Equal(t, tc.minutes, m, "minutes for %d", tc.in)
		assert.Equal(t, tc.seconds, s, "seconds for %d", tc.in)
	}
}

func TestReadBoardFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.csv")
	content := "color,count\n#ff0000,3\n#00ff00, 2\nbroken\n#0000ff,zero\n#000000,0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	counts, err := ReadBoardFile(path)
	require.NoError(t, err)
	assert.Equal(t, []internal.ColorCount{
		{Color: "#ff0000", Count: 3},
		{Color: "#00ff00", Count: 2},
	}, counts)
}

func TestReadBoardFile_Errors(t *testing.T) {
	_, err := ReadBoardFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("only-one-field\n"), 0o600))
	_, err = ReadBoardFile(path)
	assert.Error(t, err)
}
