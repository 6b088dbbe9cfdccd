package words

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCorners_RoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		x, y, x2, y2 int
	}{
		{"origin", 0, 0, 10, 10},
		{"offset", 36, 92, 96, 116},
		{"zero width", 5, 5, 5, 20},
		{"large", 1200, 3400, 1530, 3460},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromCorners(tt.x, tt.y, tt.x2, tt.y2, "w", 90)
			assert.Equal(t, tt.x2, r.X+r.W)
			assert.Equal(t, tt.y2, r.Y+r.H)
			assert.Equal(t, tt.x2, r.Right())
			assert.Equal(t, tt.y2, r.Bottom())
		})
	}
}

func TestRecord_CenterTruncates(t *testing.T) {
	r := Record{X: 10, Y: 20, W: 5, H: 7}
	cx, cy := r.Center()
	assert.Equal(t, 12, cx)
	assert.Equal(t, 23, cy)
}

func TestRect_ContainsEdgesInclusive(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 40}

	assert.True(t, r.Contains(10, 20))
	assert.True(t, r.Contains(40, 60))
	assert.False(t, r.Contains(9, 30))
	assert.False(t, r.Contains(41, 30))
	assert.False(t, r.Contains(20, 19))
	assert.False(t, r.Contains(20, 61))
}

func TestParseRect(t *testing.T) {
	r, err := ParseRect("1, 2,3 ,4")
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 1, Y: 2, W: 3, H: 4}, r)
	assert.Equal(t, "1,2,3,4", r.String())

	for _, bad := range []string{"", "1,2,3", "1,2,3,4,5", "a,b,c,d"} {
		_, err := ParseRect(bad)
		assert.Error(t, err, "ParseRect(%q)", bad)
	}
}

func TestTable_Bounds(t *testing.T) {
	assert.Equal(t, Rect{}, Table{}.Bounds())

	tbl := Table{
		{X: 10, Y: 10, W: 20, H: 10},
		{X: 40, Y: 5, W: 10, H: 30},
	}
	assert.Equal(t, Rect{X: 10, Y: 5, W: 40, H: 30}, tbl.Bounds())
	assert.Equal(t, []string{"", ""}, tbl.Texts())
}

func TestWriteTSV(t *testing.T) {
	tbl := Table{
		{X: 0, Y: 0, W: 10, H: 10, Text: "Hello", Conf: 96},
		{X: 15, Y: 0, W: 10, H: 10, Text: "World", Conf: -1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, tbl))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "x\ty\tw\th\ttext\tconf", lines[0])
	assert.Equal(t, "0\t0\t10\t10\tHello\t96", lines[1])
	assert.Equal(t, "15\t0\t10\t10\tWorld\t-1", lines[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, Table{{X: 1, Y: 2, W: 3, H: 4, Text: "a", Conf: 50}}))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	for _, col := range Columns {
		assert.Contains(t, decoded[0], col)
	}
	assert.Len(t, decoded[0], len(Columns))
}
