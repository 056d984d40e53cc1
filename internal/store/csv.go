package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

type columnKind int

const (
	columnMetric columnKind = iota
	columnPosition
	columnNationality
)

type column struct {
	name string
	idx  int
	kind columnKind
}

// table is one parsed source file, not yet merged.
type table struct {
	source Source
	key    [4]int
	cols   []column
	rows   [][]string
}

var keyAliases = [4][]string{
	{"league", "comp", "competition"},
	{"season"},
	{"team", "squad", "club"},
	{"player", "name"},
}

var positionCodes = map[string]string{
	"FW": "Forward",
	"MF": "Midfielder",
	"DF": "Defender",
	"GK": "Goalkeeper",
}

func readTable(ctx context.Context, src Source) (*table, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", src.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%q is empty", src.Path)
		}
		return nil, fmt.Errorf("read header of %q: %w", src.Path, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	t := &table{source: src}
	if !locateKey(header, &t.key) {
		if len(header) < 4 {
			return nil, fmt.Errorf("%q has %d columns, need at least the 4 key columns", src.Path, len(header))
		}
		t.key = [4]int{0, 1, 2, 3}
	}
	isKey := make(map[int]bool, 4)
	for _, k := range t.key {
		isKey[k] = true
	}
	for i, name := range header {
		if isKey[i] || name == "" {
			continue
		}
		t.cols = append(t.cols, column{name: name, idx: i, kind: classify(name)})
	}

	for line := 0; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", src.Path, err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func locateKey(header []string, key *[4]int) bool {
	for k, aliases := range keyAliases {
		found := -1
		for i, name := range header {
			if slices.Contains(aliases, name) {
				found = i
				break
			}
		}
		if found < 0 {
			return false
		}
		key[k] = found
	}
	return true
}

func classify(name string) columnKind {
	switch name {
	case "position", "pos":
		return columnPosition
	case "nationality", "nation":
		return columnNationality
	default:
		return columnMetric
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber coerces a cell to float. Unparseable cells report false and stay null.
func parseNumber(column, raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if column == "age" {
		// fbref ages come as "years-days".
		if i := strings.IndexByte(s, '-'); i > 0 {
			s = s[:i]
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizePosition expands fbref codes ("MF,FW") into the long names used by queries.
func normalizePosition(raw string) string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if long, ok := positionCodes[strings.ToUpper(p)]; ok {
			p = long
		}
		parts[i] = p
	}
	return strings.Join(parts, ",")
}
