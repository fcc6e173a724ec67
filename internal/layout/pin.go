package layout

import (
	"sync"

	"github.com/parleyhq/parley/internal/store"
)

// PinController tracks the explicitly pinned tile. It is the only
// stateful part of the layout engine besides the pagination index.
type PinController struct {
	mu     sync.Mutex
	pinned *store.Tile
}

// Pin promotes a tile to the central position.
func (p *PinController) Pin(tile store.Tile) {
	p.mu.Lock()
	p.pinned = &tile
	p.mu.Unlock()
}

// Unpin clears the pin.
func (p *PinController) Unpin() {
	p.mu.Lock()
	p.pinned = nil
	p.mu.Unlock()
}

// Current returns the pinned tile, if any.
func (p *PinController) Current() (store.Tile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pinned == nil {
		return store.Tile{}, false
	}
	return *p.pinned, true
}

// Reconcile re-evaluates the pin against the current tile list:
//   - fewer than 3 tiles collapses the view to face-to-face and clears
//     the pin,
//   - a pinned tile that disappeared clears the pin, except that a
//     vanished screen-share pin switches to the most recently started
//     remaining screen-share (tiles carry screens newest-first).
func (p *PinController) Reconcile(tiles []store.Tile) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pinned == nil {
		return
	}
	if len(tiles) < 3 {
		p.pinned = nil
		return
	}
	for _, t := range tiles {
		if t == *p.pinned {
			return
		}
	}
	if p.pinned.Stream == store.TileScreen {
		for _, t := range tiles {
			if t.Stream == store.TileScreen {
				pin := t
				p.pinned = &pin
				return
			}
		}
	}
	p.pinned = nil
}
