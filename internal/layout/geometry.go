// Package layout computes presentation geometry for meeting tiles.
// Everything except the pin controller is a pure function: identical
// inputs always produce identical outputs.
package layout

// Dims is a container's pixel dimensions.
type Dims struct {
	Width  int
	Height int
}

// Grid is a row×column partition of a container into same-size tiles.
type Grid struct {
	Rows       int
	Columns    int
	TileWidth  int
	TileHeight int
}

// PageSize returns how many tiles fit on one page of the grid.
func (g Grid) PageSize() int {
	return g.Rows * g.Columns
}

// Pages returns the number of pages needed for tileCount tiles.
func (g Grid) Pages(tileCount int) int {
	size := g.PageSize()
	if size <= 0 || tileCount <= 0 {
		return 0
	}
	return (tileCount + size - 1) / size
}

// MaximiseRowsAndColumns partitions the container into the largest
// row×column grid of same-size tiles at the target minimum tile width.
// Degenerate containers degrade to a 1×1 partition with zero tile size.
func MaximiseRowsAndColumns(container Dims, aspect float64, minTileWidth int) Grid {
	if aspect <= 0 {
		aspect = 16.0 / 9.0
	}
	if container.Width <= 0 || container.Height <= 0 || minTileWidth <= 0 {
		return Grid{Rows: 1, Columns: 1}
	}

	columns := container.Width / minTileWidth
	if columns < 1 {
		columns = 1
	}
	tileWidth := container.Width / columns
	tileHeight := int(float64(tileWidth) / aspect)
	if tileHeight < 1 {
		tileHeight = 1
	}
	rows := container.Height / tileHeight
	if rows < 1 {
		rows = 1
		tileHeight = container.Height
	}
	return Grid{
		Rows:       rows,
		Columns:    columns,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
	}
}

// MaximiseTileSize abandons the fixed minimum width and grows tileCount
// tiles to fill the container, used when everything fits on one page.
func MaximiseTileSize(container Dims, aspect float64, tileCount int) Grid {
	if aspect <= 0 {
		aspect = 16.0 / 9.0
	}
	if tileCount <= 0 || container.Width <= 0 || container.Height <= 0 {
		return Grid{Rows: 1, Columns: 1}
	}

	best := Grid{Rows: 1, Columns: 1}
	for columns := 1; columns <= tileCount; columns++ {
		rows := (tileCount + columns - 1) / columns
		cellWidth := container.Width / columns
		cellHeight := container.Height / rows

		tileWidth := cellWidth
		if byHeight := int(float64(cellHeight) * aspect); byHeight < tileWidth {
			tileWidth = byHeight
		}
		if tileWidth > best.TileWidth {
			best = Grid{
				Rows:       rows,
				Columns:    columns,
				TileWidth:  tileWidth,
				TileHeight: int(float64(tileWidth) / aspect),
			}
		}
	}
	return best
}

// FitGrid picks the grid for tileCount tiles: a full-density partition
// when it needs more than one page, otherwise tiles grown to fill the
// container.
func FitGrid(container Dims, aspect float64, minTileWidth, tileCount int) Grid {
	grid := MaximiseRowsAndColumns(container, aspect, minTileWidth)
	if grid.Pages(tileCount) <= 1 {
		return MaximiseTileSize(container, aspect, tileCount)
	}
	return grid
}
