package layout

import "testing"

func TestMaximiseRowsAndColumns(t *testing.T) {
	tests := []struct {
		name      string
		container Dims
		minWidth  int
		wantRows  int
		wantCols  int
	}{
		{"wide container", Dims{1280, 720}, 320, 4, 4},
		{"narrow container", Dims{300, 720}, 320, 4, 1},
		{"exactly one tile wide", Dims{320, 180}, 320, 1, 1},
		{"short container", Dims{1280, 100}, 320, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MaximiseRowsAndColumns(tt.container, 16.0/9.0, tt.minWidth)
			if g.Rows != tt.wantRows || g.Columns != tt.wantCols {
				t.Errorf("grid = %dx%d, want %dx%d", g.Rows, g.Columns, tt.wantRows, tt.wantCols)
			}
			if g.TileWidth < 0 || g.TileHeight < 0 {
				t.Errorf("negative tile size: %+v", g)
			}
		})
	}
}

func TestGeometryDegradesOnDegenerateDims(t *testing.T) {
	for _, d := range []Dims{{0, 0}, {-5, 100}, {100, -5}, {0, 500}} {
		g := MaximiseRowsAndColumns(d, 16.0/9.0, 320)
		if g.Rows != 1 || g.Columns != 1 {
			t.Errorf("MaximiseRowsAndColumns(%+v) = %+v, want 1x1", d, g)
		}
		g = MaximiseTileSize(d, 16.0/9.0, 4)
		if g.Rows != 1 || g.Columns != 1 {
			t.Errorf("MaximiseTileSize(%+v) = %+v, want 1x1", d, g)
		}
	}
}

func TestGeometryDeterminism(t *testing.T) {
	container := Dims{1477, 831}
	a := MaximiseRowsAndColumns(container, 16.0/9.0, 320)
	b := MaximiseRowsAndColumns(container, 16.0/9.0, 320)
	if a != b {
		t.Errorf("MaximiseRowsAndColumns not deterministic: %+v != %+v", a, b)
	}

	c := MaximiseTileSize(container, 16.0/9.0, 7)
	d := MaximiseTileSize(container, 16.0/9.0, 7)
	if c != d {
		t.Errorf("MaximiseTileSize not deterministic: %+v != %+v", c, d)
	}
}

func TestMaximiseTileSizeFillsContainer(t *testing.T) {
	g := MaximiseTileSize(Dims{1280, 720}, 16.0/9.0, 2)
	if g.Rows*g.Columns < 2 {
		t.Errorf("grid %dx%d cannot hold 2 tiles", g.Rows, g.Columns)
	}
	// Growing 2 tiles must beat the 320px-floor grid's tile size.
	dense := MaximiseRowsAndColumns(Dims{1280, 720}, 16.0/9.0, 320)
	if g.TileWidth <= dense.TileWidth {
		t.Errorf("grown tile width %d not larger than dense %d", g.TileWidth, dense.TileWidth)
	}
}

func TestFitGridSwitchesToMaximiseOnSinglePage(t *testing.T) {
	container := Dims{1280, 720}

	// 3 tiles fit one dense page, so tiles are grown instead.
	single := FitGrid(container, 16.0/9.0, 320, 3)
	grown := MaximiseTileSize(container, 16.0/9.0, 3)
	if single != grown {
		t.Errorf("single page grid = %+v, want grown %+v", single, grown)
	}

	// 40 tiles overflow the dense page, so the dense partition stays.
	multi := FitGrid(container, 16.0/9.0, 320, 40)
	dense := MaximiseRowsAndColumns(container, 16.0/9.0, 320)
	if multi != dense {
		t.Errorf("multi page grid = %+v, want dense %+v", multi, dense)
	}
}

func TestGridPages(t *testing.T) {
	g := Grid{Rows: 2, Columns: 2}
	tests := []struct {
		count int
		want  int
	}{
		{0, 0}, {1, 1}, {4, 1}, {5, 2}, {8, 2}, {9, 3},
	}
	for _, tt := range tests {
		if got := g.Pages(tt.count); got != tt.want {
			t.Errorf("Pages(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}
