package mesh

// Quad builds a width x height rectangle centered on (0, 0, z), facing +Z,
// split into two triangles.
func Quad(width, height, z float32) *Mesh {
	hw, hh := width/2, height/2
	m, _ := New(
		[][3]float32{
			{-hw, -hh, z},
			{hw, -hh, z},
			{hw, hh, z},
			{-hw, hh, z},
		},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
	return m
}

// Box builds an axis-aligned box centered on the origin.
func Box(sx, sy, sz float32) *Mesh {
	x, y, z := sx/2, sy/2, sz/2
	m, _ := New(
		[][3]float32{
			{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
			{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
		},
		[]uint32{
			4, 5, 6, 4, 6, 7, // front (+Z)
			1, 0, 3, 1, 3, 2, // back
			0, 4, 7, 0, 7, 3, // left
			5, 1, 2, 5, 2, 6, // right
			3, 7, 6, 3, 6, 2, // top
			0, 1, 5, 0, 5, 4, // bottom
		},
	)
	return m
}
