package views

import (
	"fmt"
	"strings"

	"github.com/parleyhq/parley/internal/api"
	"github.com/rivo/tview"
)

// MessageThread displays the visible messages of a single room, with
// reaction groups and edit/deletion markers folded in.
type MessageThread struct {
	*tview.TextView
	roomName string
}

// NewMessageThread creates the message view.
func NewMessageThread() *MessageThread {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")

	return &MessageThread{TextView: tv}
}

// SetRoomName updates the title with the room name.
func (mt *MessageThread) SetRoomName(name string) {
	mt.roomName = name
	mt.SetTitle(fmt.Sprintf(" %s ", sanitizeForTerminal(name)))
}

// Update refreshes the view. Messages arrive oldest first and render in
// that order.
func (mt *MessageThread) Update(msgs []api.Message) {
	mt.Clear()

	for _, m := range msgs {
		sender := m.SenderName
		if sender == "" {
			sender = m.SenderID
		}
		if m.Pending {
			sender += " [::d](resolving)[-:-:-]"
		}

		body := m.Body
		if m.Deleted {
			body = "[::d]message deleted[-:-:-]"
		} else if m.Edited {
			body += " [::d](edited)[-:-:-]"
		}

		ts := formatTimestamp(m.Timestamp)
		line := fmt.Sprintf("[::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n", sanitizeForTerminal(sender), ts, sanitizeForTerminal(body))
		if groups := formatReactions(m.Reactions); groups != "" {
			line += "  " + groups + "\n"
		}
		_, _ = fmt.Fprint(mt, line+"\n")
	}

	mt.ScrollToEnd()
}

func formatReactions(groups []api.Group) string {
	if len(groups) == 0 {
		return ""
	}
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, fmt.Sprintf("%s %d", sanitizeForTerminal(g.Value), len(g.Actors)))
	}
	return "[::d]" + strings.Join(parts, "  ") + "[-:-:-]"
}
