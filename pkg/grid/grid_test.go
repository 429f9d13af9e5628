package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 64 cols (framebuffer width)
		{0, 64, 0, 0},
		{1, 64, 1, 0},
		{63, 64, 63, 0},
		{64, 64, 0, 1},
		{65, 64, 1, 1},
		{127, 64, 63, 1},
		{2047, 64, 63, 31},

		// 8 cols (one sprite row)
		{0, 8, 0, 0},
		{7, 8, 7, 0},
		{8, 8, 0, 1},
		{39, 8, 7, 4},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
		if got := GetGridIndex(gotX, gotY, tc.cols); got != tc.index {
			t.Errorf("GetGridIndex(%d, %d, %d) = %d; want %d", gotX, gotY, tc.cols, got, tc.index)
		}
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{63, 31, true},
		{64, 0, false},
		{0, 32, false},
		{-1, 5, false},
		{5, -1, false},
	}
	for _, tc := range tests {
		if got := Contains(tc.x, tc.y, 64, 32); got != tc.want {
			t.Errorf("Contains(%d, %d, 64, 32) = %v; want %v", tc.x, tc.y, got, tc.want)
		}
	}
}
