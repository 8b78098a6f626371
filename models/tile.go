package models

import "fmt"

// Tile identifies the content of a single map cell
type Tile int

// Tile types represented as integers for compact serialization. The
// numeric values are part of the wire and sink format and must not be
// reordered.
const (
	TileBorder Tile = iota
	TileEmpty
	TileWall
	TileBat
)

// tileNames maps each known tile to its legend name
var tileNames = map[Tile]string{
	TileBorder: "border",
	TileEmpty:  "empty",
	TileWall:   "wall",
	TileBat:    "bat",
}

// Valid reports whether t is a known tile type
func (t Tile) Valid() bool {
	_, ok := tileNames[t]
	return ok
}

// String returns the tile's legend name
func (t Tile) String() string {
	if name, ok := tileNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tile(%d)", int(t))
}

// TileInfo pairs a tile value with its display name
type TileInfo struct {
	ID   Tile   `json:"id"`
	Name string `json:"name"`
}

// Legend lists every known tile with its name, in wire order
func Legend() []TileInfo {
	return []TileInfo{
		{ID: TileBorder, Name: "border"},
		{ID: TileEmpty, Name: "empty"},
		{ID: TileWall, Name: "wall"},
		{ID: TileBat, Name: "bat"},
	}
}
