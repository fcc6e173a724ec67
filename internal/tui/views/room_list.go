package views

import (
	"time"

	"github.com/parleyhq/parley/internal/api"
	"github.com/rivo/tview"
)

// RoomList is the main room table, most recently active room first.
type RoomList struct {
	*tview.Table
	rooms      []api.Room
	selectedFn func() (int, int)
}

// NewRoomList creates the room list table.
func NewRoomList() *RoomList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Rooms ")

	rl := &RoomList{Table: table}
	rl.selectedFn = table.GetSelection
	return rl
}

// Update refreshes the room list with new data.
func (rl *RoomList) Update(rooms []api.Room) {
	rl.rooms = rooms
	rl.Clear()

	rl.SetCell(0, 0, tview.NewTableCell(" Name").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	rl.SetCell(0, 1, tview.NewTableCell(" Type").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	rl.SetCell(0, 2, tview.NewTableCell(" ").SetSelectable(false))

	for i, room := range rooms {
		row := i + 1
		name := room.Name
		if name == "" {
			name = room.ID
		}
		marks := ""
		if room.Muted {
			marks += "muted "
		}
		if room.MeetingID != "" {
			marks += "meeting "
		}
		if room.Empty {
			name = "[::d]" + name + "[-:-:-]"
		}

		rl.SetCell(row, 0, tview.NewTableCell(" "+sanitizeForTerminal(name)).SetMaxWidth(40).SetExpansion(2))
		rl.SetCell(row, 1, tview.NewTableCell(" "+room.Type).SetMaxWidth(12))
		rl.SetCell(row, 2, tview.NewTableCell(" "+marks).SetMaxWidth(20).SetExpansion(1))
	}
}

// SelectedRoom returns the id of the currently selected room.
func (rl *RoomList) SelectedRoom() string {
	row, _ := rl.selectedFn()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(rl.rooms) {
		return rl.rooms[idx].ID
	}
	return ""
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
