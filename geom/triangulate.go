package geom

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/rclancey/earcut"
)

// Triangulate splits a simple polygon into triangles that cover exactly its
// area. Either winding is accepted. Fewer than three points, or a loop earcut
// rejects, is a programming error.
func Triangulate(points []cp.Vector) []Triangle {
	if len(points) <= 2 {
		panic("geom: tried to triangulate a polygon with fewer than three points")
	}

	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	idx, err := earcut.Earcut(flat, nil, 2)
	if err != nil {
		panic(fmt.Sprintf("geom: triangulate: %v", err))
	}

	tris := make([]Triangle, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		tris = append(tris, Triangle{points[idx[i]], points[idx[i+1]], points[idx[i+2]]})
	}
	return tris
}

// Area returns the unsigned area enclosed by a point loop.
func Area(points []cp.Vector) float64 {
	var sum float64
	for i := range points {
		j := (i + 1) % len(points)
		sum += points[i].Cross(points[j])
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
