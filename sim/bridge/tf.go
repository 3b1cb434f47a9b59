package bridge

// Frame is one edge of the transform tree: the pose of frame ID
// expressed in its Parent frame. The world→body edge is kinematic and
// refreshed each publish; body→mount edges are static.
type Frame struct {
	ID     string     `msgpack:"id"`
	Parent string     `msgpack:"parent"`
	Pos    [3]float64 `msgpack:"pos"`
	Orient [4]float64 `msgpack:"orient"` // w-x-y-z
}
