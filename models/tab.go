package models

// UITab identifies which editor panel is active
type UITab string

// Editor panels
const (
	TabDraw    UITab = "draw"
	TabChat    UITab = "chat"
	TabAnimate UITab = "animate"
)

// DefaultTab is the panel shown when no preference is stored
const DefaultTab = TabDraw

// Valid reports whether t names a known panel
func (t UITab) Valid() bool {
	switch t {
	case TabDraw, TabChat, TabAnimate:
		return true
	}
	return false
}
