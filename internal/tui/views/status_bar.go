package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/parleyhq/parley/internal/api"
	"github.com/rivo/tview"
)

// StatusBar displays the profile name, the combined connectivity status
// and the dismissible degraded banner.
type StatusBar struct {
	*tview.TextView
	profile string
	health  api.Health
	flash   string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetHealth updates the connectivity display.
func (sb *StatusBar) SetHealth(h api.Health) {
	sb.health = h
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	status := sb.health.Combined
	if status == "" {
		status = "UNKNOWN"
	}
	statusColor := "green"
	if status != "HEALTHY" {
		statusColor = "orange"
	}

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | [%s]%s[-] | %s", sb.profile, statusColor, status, clock)
	if sb.health.BannerVisible {
		line += fmt.Sprintf(" | [black:orange] connection degraded: %s (d to dismiss) [-:-]", sb.downChannels())
	}
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}

func (sb *StatusBar) downChannels() string {
	var down []string
	for ch, liveness := range sb.health.Channels {
		if liveness == "DOWN" {
			down = append(down, ch)
		}
	}
	sort.Strings(down)
	return strings.Join(down, ", ")
}
