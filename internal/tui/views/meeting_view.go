package views

import (
	"fmt"
	"strings"

	"github.com/parleyhq/parley/internal/api"
	"github.com/rivo/tview"
)

// MeetingView renders the computed tile arrangement of the active
// meeting as a character grid, one cell per tile.
type MeetingView struct {
	*tview.TextView
	names map[string]string
}

// NewMeetingView creates the meeting grid view.
func NewMeetingView() *MeetingView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	tv.SetBorder(true).SetTitle(" Meeting ")

	return &MeetingView{TextView: tv, names: make(map[string]string)}
}

// SetRoster records display names for tile labels.
func (mv *MeetingView) SetRoster(parts []api.Participant) {
	mv.names = make(map[string]string, len(parts))
	for _, p := range parts {
		mv.names[p.UserID] = p.Name
	}
}

// GridSize returns the drawable cell area inside the border, for use as
// the arrangement container.
func (mv *MeetingView) GridSize() (int, int) {
	_, _, w, h := mv.GetInnerRect()
	return w, h
}

// Update redraws the grid from a computed arrangement. Only the tiles
// inside the pagination window are drawn.
func (mv *MeetingView) Update(arr api.Arrangement) {
	mv.Clear()
	mv.SetTitle(fmt.Sprintf(" Meeting [%s] ", arr.Composition))

	if arr.Pinned != nil {
		label := mv.label(*arr.Pinned)
		_, _ = fmt.Fprintf(mv, "[orange::b]pinned: %s[-:-:-]\n\n", label)
	}

	if len(arr.Tiles) == 0 {
		_, _ = fmt.Fprint(mv, "[::d]nobody here[-:-:-]\n")
		return
	}

	visible := arr.Tiles
	if arr.PageSize > 0 && arr.PageIndex < len(visible) {
		end := arr.PageIndex + arr.PageSize
		if end > len(visible) {
			end = len(visible)
		}
		visible = visible[arr.PageIndex:end]
	}

	cols := arr.Columns
	if cols < 1 {
		cols = 1
	}
	cellW := arr.TileWidth
	if cellW < 8 {
		cellW = 8
	}

	for row := 0; row*cols < len(visible); row++ {
		var line strings.Builder
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(visible) {
				break
			}
			line.WriteString(mv.cell(visible[i], cellW))
		}
		_, _ = fmt.Fprintln(mv, line.String())
	}

	pager := ""
	if !arr.AtStart {
		pager += "< "
	}
	if !arr.AtEnd {
		pager += ">"
	}
	if pager != "" {
		_, _ = fmt.Fprintf(mv, "\n[::d]%s[-:-:-]\n", pager)
	}
}

func (mv *MeetingView) cell(t api.Tile, width int) string {
	label := mv.label(t)
	if len(label) > width-4 {
		label = label[:width-4]
	}
	color := "-"
	if t.Stream == "screen" {
		color = "aqua"
	}
	return fmt.Sprintf("[%s][%-*s][-] ", color, width-4, label)
}

func (mv *MeetingView) label(t api.Tile) string {
	name := mv.names[t.UserID]
	if name == "" {
		name = t.UserID
	}
	name = sanitizeForTerminal(name)
	if t.Stream == "screen" {
		return name + " (screen)"
	}
	return name
}
