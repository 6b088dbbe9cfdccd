package words

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// Columns is the fixed column order of a word table.
var Columns = []string{"x", "y", "w", "h", "text", "conf"}

// WriteTSV writes t as tab-separated values with a header row.
func WriteTSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range t {
		row := []string{
			strconv.Itoa(r.X),
			strconv.Itoa(r.Y),
			strconv.Itoa(r.W),
			strconv.Itoa(r.H),
			r.Text,
			strconv.Itoa(r.Conf),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes t as an indented JSON array. A nil table is written as
// an empty array.
func WriteJSON(w io.Writer, t Table) error {
	if t == nil {
		t = Table{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}
