package network

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatStation renders s as "<id>;<waste types>;<n1>,<n2>,...".
// A station without neighbors ends with an empty field, e.g. "4;B;".
func FormatStation(s *Station) string {
	return Canonicalize(s).String()
}

func (c Canonical) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(c.ID)))
	b.WriteByte(';')
	b.WriteString(c.WasteTypes)
	b.WriteByte(';')
	for i, n := range c.Neighbors {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(n)))
	}
	return b.String()
}

// WriteStations writes one line per station in ascending id order
func WriteStations(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	for _, s := range g.Stations {
		if _, err := fmt.Fprintln(bw, FormatStation(s)); err != nil {
			return fmt.Errorf("failed to write station %d: %w", s.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush station output: %w", err)
	}
	return nil
}
