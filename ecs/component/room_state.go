package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/common"
)

const (
	DefaultRoomWidth  = 640
	DefaultRoomHeight = 360
)

// RoomState is the singleton describing the current room. Positions of
// RoomWrap bodies stay inside [-Width/2, Width/2) x [-Height/2, Height/2).
type RoomState struct {
	Width  float64
	Height float64
}

func (r *RoomState) Size() (float64, float64) {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return DefaultRoomWidth, DefaultRoomHeight
	}
	return r.Width, r.Height
}

// MirageOffsets lists the translations to the eight neighbouring copies of
// the room.
func (r *RoomState) MirageOffsets() []cp.Vector {
	w, h := r.Size()
	return common.MirageOffsets(w, h)
}

var RoomStateComponent = NewComponent[RoomState]()
