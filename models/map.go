package models

import (
	"encoding/json"
	"fmt"
)

// GridShape holds the dimensions used to build new maps
type GridShape struct {
	Rows int
	Cols int
}

// GridMap is one rectangular map state: rows of tiles, all rows the
// same length. It is a value type with no identity of its own; use
// Clone before mutating a shared instance and Equal for comparisons.
type GridMap [][]Tile

// NewGridMap builds an all-empty map of the given shape
func NewGridMap(shape GridShape) GridMap {
	m := make(GridMap, shape.Rows)
	for r := range m {
		m[r] = make([]Tile, shape.Cols)
		for c := range m[r] {
			m[r][c] = TileEmpty
		}
	}
	return m
}

// Rows returns the number of rows
func (m GridMap) Rows() int {
	return len(m)
}

// Cols returns the number of columns
func (m GridMap) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Shape returns the map's dimensions
func (m GridMap) Shape() GridShape {
	return GridShape{Rows: m.Rows(), Cols: m.Cols()}
}

// InBounds reports whether (row, col) addresses a cell of the map
func (m GridMap) InBounds(row, col int) bool {
	return row >= 0 && row < len(m) && col >= 0 && col < m.Cols()
}

// Clone returns a deep copy sharing no storage with m
func (m GridMap) Clone() GridMap {
	if m == nil {
		return nil
	}
	out := make(GridMap, len(m))
	for r := range m {
		out[r] = make([]Tile, len(m[r]))
		copy(out[r], m[r])
	}
	return out
}

// Equal reports structural equality: same shape and the same tile in
// every cell
func (m GridMap) Equal(other GridMap) bool {
	if len(m) != len(other) {
		return false
	}
	for r := range m {
		if len(m[r]) != len(other[r]) {
			return false
		}
		for c := range m[r] {
			if m[r][c] != other[r][c] {
				return false
			}
		}
	}
	return true
}

// Validate checks that the map is non-empty, rectangular and holds
// only known tile types
func (m GridMap) Validate() error {
	if len(m) == 0 || len(m[0]) == 0 {
		return fmt.Errorf("map must have at least one row and one column")
	}
	cols := len(m[0])
	for r := range m {
		if len(m[r]) != cols {
			return fmt.Errorf("row %d has %d columns, want %d", r, len(m[r]), cols)
		}
		for c, t := range m[r] {
			if !t.Valid() {
				return fmt.Errorf("unknown tile %d at row %d col %d", int(t), r, c)
			}
		}
	}
	return nil
}

// EncodeMap serializes a map to its wire form, a nested integer array
func EncodeMap(m GridMap) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode map: %v", err)
	}
	return string(data), nil
}

// DecodeMap parses the wire form back into a map and validates it
func DecodeMap(text string) (GridMap, error) {
	var m GridMap
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("failed to decode map: %v", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("decoded map is invalid: %v", err)
	}
	return m, nil
}

// CellEdit places one tile at one cell
type CellEdit struct {
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Tile Tile `json:"tile"`
}
