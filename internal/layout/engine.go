package layout

import (
	"sync"

	"github.com/parleyhq/parley/internal/store"
)

// ViewMode is the user-chosen composition for 3+ tiles.
type ViewMode string

const (
	ModeGrid   ViewMode = "grid"
	ModeCinema ViewMode = "cinema"
)

// Composition is the selected arrangement of a meeting view.
type Composition string

const (
	// FaceToFace is one large central tile plus a small self preview.
	FaceToFace Composition = "face_to_face"
	GridView   Composition = "grid"
	CinemaView Composition = "cinema"
)

// SelectComposition picks the arrangement: fewer than 3 tiles always
// compose face-to-face, independent of pagination; 3+ follow the
// user-chosen view mode.
func SelectComposition(tileCount int, mode ViewMode) Composition {
	if tileCount < 3 {
		return FaceToFace
	}
	if mode == ModeCinema {
		return CinemaView
	}
	return GridView
}

// Arrangement is one computed meeting layout.
type Arrangement struct {
	Composition Composition
	Grid        Grid
	Tiles       []store.Tile
	Page        View
	Pinned      *store.Tile
}

// Engine computes meeting arrangements from the store's derived tile
// list. Geometry is pure; the engine only holds the pagination window,
// the pin and the chosen view mode.
type Engine struct {
	mu           sync.Mutex
	mode         ViewMode
	window       Window
	pin          PinController
	aspect       float64
	minTileWidth int
	carouselStep int
}

// NewEngine creates an engine with the given tuning.
func NewEngine(aspect float64, minTileWidth int) *Engine {
	return &Engine{
		mode:         ModeGrid,
		aspect:       aspect,
		minTileWidth: minTileWidth,
		carouselStep: 1,
	}
}

// SetMode switches the 3+-tile composition.
func (e *Engine) SetMode(mode ViewMode) {
	e.mu.Lock()
	e.mode = mode
	e.mu.Unlock()
}

// Mode returns the current view mode.
func (e *Engine) Mode() ViewMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Pin pins a tile; Unpin clears it. Reconciliation against the live
// tile list happens on every Arrange call.
func (e *Engine) Pin(tile store.Tile) { e.pin.Pin(tile) }
func (e *Engine) Unpin()              { e.pin.Unpin() }

// PagePrev and PageNext move the pagination window. They take the
// current tile count so the window is clamped before stepping.
func (e *Engine) PagePrev(tiles []store.Tile, container Dims) Arrangement {
	e.mu.Lock()
	grid := e.gridLocked(tiles, container)
	e.window.Prev(len(tiles), grid.PageSize(), e.carouselStep)
	e.mu.Unlock()
	return e.Arrange(tiles, container)
}

func (e *Engine) PageNext(tiles []store.Tile, container Dims) Arrangement {
	e.mu.Lock()
	grid := e.gridLocked(tiles, container)
	e.window.Next(len(tiles), grid.PageSize(), e.carouselStep)
	e.mu.Unlock()
	return e.Arrange(tiles, container)
}

// Arrange computes the full arrangement for the current tile list and
// container. The pin is reconciled first, then geometry and the
// pagination window are recomputed (clamping the index if the tile list
// shrank).
func (e *Engine) Arrange(tiles []store.Tile, container Dims) Arrangement {
	e.pin.Reconcile(tiles)

	e.mu.Lock()
	defer e.mu.Unlock()

	arr := Arrangement{
		Composition: SelectComposition(len(tiles), e.mode),
		Tiles:       tiles,
	}
	arr.Grid = e.gridLocked(tiles, container)
	arr.Page = e.window.View(len(tiles), arr.Grid.PageSize())
	if pinned, ok := e.pin.Current(); ok {
		arr.Pinned = &pinned
	}
	return arr
}

func (e *Engine) gridLocked(tiles []store.Tile, container Dims) Grid {
	return FitGrid(container, e.aspect, e.minTileWidth, len(tiles))
}
