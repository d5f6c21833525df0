package listing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/network"
	"github.com/wastenet/stations/internal/waste"
)

// Public flag values
const (
	AnyPublic = -1
	Private   = 0
	Public    = 1
)

// ErrInvalidFilter is returned for malformed filter arguments
var ErrInvalidFilter = errors.New("invalid filter")

// Filter selects containers for the listing report
type Filter struct {
	WasteTypes  []waste.Symbol
	CapacityMin int
	CapacityMax int
	Public      int
}

// NewFilter returns a filter that matches every container
func NewFilter() Filter {
	return Filter{Public: AnyPublic}
}

// Match reports whether c passes all three criteria
func (f Filter) Match(c dataset.Container) bool {
	return f.matchWasteType(c) && f.matchCapacity(c) && f.matchPublic(c)
}

func (f Filter) matchWasteType(c dataset.Container) bool {
	if len(f.WasteTypes) == 0 {
		return true
	}
	sym, ok := waste.FromLabel(c.WasteLabel)
	if !ok {
		return false
	}
	for _, want := range f.WasteTypes {
		if want == sym {
			return true
		}
	}
	return false
}

func (f Filter) matchCapacity(c dataset.Container) bool {
	if f.CapacityMin == 0 && f.CapacityMax == 0 {
		return true
	}
	return c.Capacity >= f.CapacityMin && c.Capacity <= f.CapacityMax
}

func (f Filter) matchPublic(c dataset.Container) bool {
	return f.Public == AnyPublic || c.Public == f.Public
}

// ParseWasteTypes reads a comma separated symbol list such as "A,P,T"
func ParseWasteTypes(s string) ([]waste.Symbol, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var out []waste.Symbol
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) != 1 || !waste.Symbol(part[0]).Valid() {
			return nil, fmt.Errorf("%w: unknown waste type %q", ErrInvalidFilter, part)
		}
		out = append(out, waste.Symbol(part[0]))
	}
	return out, nil
}

// ParseCapacity reads a "min-max" range
func ParseCapacity(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: capacity %q is not min-max", ErrInvalidFilter, s)
	}

	minCap, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: capacity minimum %q", ErrInvalidFilter, lo)
	}
	maxCap, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: capacity maximum %q", ErrInvalidFilter, hi)
	}
	if minCap < 0 || maxCap < minCap {
		return 0, 0, fmt.Errorf("%w: capacity range %d-%d", ErrInvalidFilter, minCap, maxCap)
	}
	return minCap, maxCap, nil
}

// ParsePublic reads "Y" or "N"
func ParsePublic(s string) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y":
		return Public, nil
	case "N":
		return Private, nil
	}
	return 0, fmt.Errorf("%w: public flag %q must be Y or N", ErrInvalidFilter, s)
}

// FormatContainer renders one listing line. ID and capacity are printed as
// written in the CSV when the raw text is known.
func FormatContainer(c dataset.Container, neighbors []network.Neighbor) string {
	id := c.RawID
	if id == "" {
		id = strconv.FormatInt(int64(c.ID), 10)
	}
	capacity := c.RawCapacity
	if capacity == "" {
		capacity = strconv.Itoa(c.Capacity)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s, Type: %s, Capacity: %s, Address: %s %s, Neighbors: ",
		id, c.WasteLabel, capacity, c.Street, c.Number)
	for i, n := range neighbors {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatInt(int64(n.ID), 10))
	}
	return b.String()
}

// Write prints every container matching f, in table order
func Write(w io.Writer, containers dataset.ContainerTable, resolver *network.Resolver, f Filter) error {
	bw := bufio.NewWriter(w)
	for _, c := range containers {
		if !f.Match(c) {
			continue
		}
		if _, err := fmt.Fprintln(bw, FormatContainer(c, resolver.NeighborsOf(c.ID))); err != nil {
			return fmt.Errorf("failed to write container %d: %w", c.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush listing: %w", err)
	}
	return nil
}
