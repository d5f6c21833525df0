package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Column layout of the containers CSV
const (
	containerColumns = 9

	colContainerID        = 0
	colContainerX         = 1
	colContainerY         = 2
	colContainerWasteType = 3
	colContainerCapacity  = 4
	colContainerName      = 5
	colContainerStreet    = 6
	colContainerNumber    = 7
	colContainerPublic    = 8
)

// Column layout of the paths CSV
const (
	pathColumns = 3

	colPathA        = 0
	colPathB        = 1
	colPathDistance = 2
)

// ErrColumnCount is returned when a row does not have the expected number of columns
var ErrColumnCount = errors.New("unexpected column count")

// Load reads both CSV files and returns the tables
func Load(containersPath, pathsPath string) (*Tables, error) {
	containers, err := LoadContainers(containersPath)
	if err != nil {
		return nil, err
	}

	paths, err := LoadPaths(pathsPath)
	if err != nil {
		return nil, err
	}

	return &Tables{Containers: containers, Paths: paths}, nil
}

// LoadContainers reads the containers CSV at path
func LoadContainers(path string) (ContainerTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open containers file: %w", err)
	}
	defer f.Close()

	containers, err := ParseContainers(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return containers, nil
}

// LoadPaths reads the paths CSV at path
func LoadPaths(path string) (PathTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open paths file: %w", err)
	}
	defer f.Close()

	paths, err := ParsePaths(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return paths, nil
}

// ParseContainers parses container rows. A leading header row is skipped.
// Malformed numeric fields parse as zero.
func ParseContainers(r io.Reader) (ContainerTable, error) {
	records, err := readRecords(r, containerColumns)
	if err != nil {
		return nil, err
	}

	containers := make(ContainerTable, 0, len(records))
	for _, record := range records {
		capacity, _ := strconv.Atoi(field(record, colContainerCapacity))
		public, _ := strconv.Atoi(field(record, colContainerPublic))

		containers = append(containers, Container{
			ID:          parseID(field(record, colContainerID)),
			RawID:       field(record, colContainerID),
			X:           parseFloat(field(record, colContainerX)),
			Y:           parseFloat(field(record, colContainerY)),
			WasteLabel:  field(record, colContainerWasteType),
			Capacity:    capacity,
			RawCapacity: field(record, colContainerCapacity),
			Name:        field(record, colContainerName),
			Street:      field(record, colContainerStreet),
			Number:      field(record, colContainerNumber),
			Public:      public,
		})
	}

	return containers, nil
}

// ParsePaths parses path rows. A leading header row is skipped.
func ParsePaths(r io.Reader) (PathTable, error) {
	records, err := readRecords(r, pathColumns)
	if err != nil {
		return nil, err
	}

	paths := make(PathTable, 0, len(records))
	for _, record := range records {
		paths = append(paths, Path{
			A:        parseID(field(record, colPathA)),
			B:        parseID(field(record, colPathB)),
			Distance: parseFloat(field(record, colPathDistance)),
		})
	}

	return paths, nil
}

// readRecords reads all rows, enforcing the column count and dropping a
// header row (first row whose leading three columns are all non-numeric).
func readRecords(r io.Reader, columns int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columns
	reader.LazyQuotes = true

	var records [][]string
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: line %d has %d columns, want %d",
					ErrColumnCount, parseErr.Line, len(record), columns)
			}
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// isHeader reports whether none of the id and coordinate (or endpoint and
// distance) columns is numeric. A data row with only a malformed id is kept.
func isHeader(record []string) bool {
	named := false
	for i := 0; i < 3; i++ {
		v := field(record, i)
		if isNumeric(v) {
			return false
		}
		named = named || v != ""
	}
	return named
}

func isNumeric(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// parseFloat returns 0 for malformed, non-finite or out of range values
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func field(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func parseID(s string) ContainerID {
	id, _ := strconv.ParseInt(s, 10, 64)
	return ContainerID(id)
}
