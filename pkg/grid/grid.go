package grid

// GetGridCoords converts a linear cell index into column/row coordinates for
// a grid that is cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// GetGridIndex is the inverse of GetGridCoords.
func GetGridIndex(x, y, cols int) int {
	return y*cols + x
}

// Contains reports whether (x, y) lies inside a cols×rows grid.
func Contains(x, y, cols, rows int) bool {
	return x >= 0 && x < cols && y >= 0 && y < rows
}
