// Package tui is the terminal frontend. It renders the daemon's state
// read-only over the socket API and drives layout commands (view mode,
// pin, paging) from keybindings.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/tui/client"
	"github.com/parleyhq/parley/internal/tui/keys"
	"github.com/parleyhq/parley/internal/tui/model"
	"github.com/parleyhq/parley/internal/tui/ui"
	"github.com/parleyhq/parley/internal/tui/views"
	"github.com/rivo/tview"
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	vm        *model.ViewModel
	client    *client.Client
	registry  *keys.Registry
	statusBar *views.StatusBar
	roomList  *views.RoomList
	thread    *views.MessageThread
	meeting   *views.MeetingView
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, profileName string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	ui.DefaultTheme().Apply()
	vm := model.NewViewModel(c)

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		vm:        vm,
		client:    c,
		registry:  keys.NewRegistry(),
		statusBar: views.NewStatusBar(),
		roomList:  views.NewRoomList(),
		thread:    views.NewMessageThread(),
		meeting:   views.NewMeetingView(),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(profileName)
	a.setupBindings()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddGlobal("dismiss", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:dismiss banner", Visible: true,
		Handler: func() { a.dismissBanner() },
	})

	a.registry.AddPage("room", "meeting", &keys.Action{
		Rune: 'M', Key: tcell.KeyRune,
		Description: "M:meeting", Visible: true,
		Handler: func() { a.openMeeting() },
	})

	a.registry.AddPage("meeting", "grid", &keys.Action{
		Rune: 'g', Key: tcell.KeyRune,
		Description: "g:grid", Visible: true,
		Handler: func() { a.setViewMode("grid") },
	})
	a.registry.AddPage("meeting", "cinema", &keys.Action{
		Rune: 'c', Key: tcell.KeyRune,
		Description: "c:cinema", Visible: true,
		Handler: func() { a.setViewMode("cinema") },
	})
	a.registry.AddPage("meeting", "pagePrev", &keys.Action{
		Rune: '[', Key: tcell.KeyRune,
		Description: "[:prev page", Visible: true,
		Handler: func() { a.page(a.client.PagePrev) },
	})
	a.registry.AddPage("meeting", "pageNext", &keys.Action{
		Rune: ']', Key: tcell.KeyRune,
		Description: "]:next page", Visible: true,
		Handler: func() { a.page(a.client.PageNext) },
	})
	a.registry.AddPage("meeting", "pin", &keys.Action{
		Rune: 'p', Key: tcell.KeyRune,
		Description: "p:pin share", Visible: true,
		Handler: func() { a.pinShare() },
	})
	a.registry.AddPage("meeting", "unpin", &keys.Action{
		Rune: 'u', Key: tcell.KeyRune,
		Description: "u:unpin", Visible: true,
		Handler: func() { a.unpin() },
	})
}

func (a *App) setupLayout() {
	a.roomList.SetSelectedFunc(func(row, col int) {
		if id := a.roomList.SelectedRoom(); id != "" {
			a.openRoom(id)
		}
	})

	a.pages.AddPage("rooms", a.roomList, true, true)
	a.pages.AddPage("room", a.thread, true, false)
	a.pages.AddPage("meeting", a.meeting, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch currentPage {
			case "room":
				a.pages.SwitchToPage("rooms")
				a.app.SetFocus(a.roomList)
				return nil
			case "meeting":
				a.pages.SwitchToPage("room")
				a.app.SetFocus(a.thread)
				return nil
			}
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}
		return event
	})
}

func (a *App) openRoom(roomID string) {
	go func() {
		if err := a.vm.LoadMessages(a.ctx, roomID); err != nil {
			a.flash("Load failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.thread.SetRoomName(a.vm.RoomName(roomID))
			a.thread.Update(a.vm.Messages())
			a.pages.SwitchToPage("room")
			a.app.SetFocus(a.thread)
		})
	}()
}

func (a *App) openMeeting() {
	meetingID := a.vm.MeetingID(a.vm.ActiveRoomID)
	if meetingID == "" {
		a.flash("No meeting in this room")
		return
	}
	go func() {
		if err := a.vm.LoadMeeting(a.ctx, meetingID); err != nil {
			a.flash("Meeting load failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.meeting.SetRoster(a.vm.Participants())
			a.pages.SwitchToPage("meeting")
			a.app.SetFocus(a.meeting)
			a.refreshMeeting()
		})
	}()
}

// refreshMeeting re-arranges against the view's current size. Must run
// on the UI goroutine.
func (a *App) refreshMeeting() {
	meetingID := a.vm.ActiveMeetingID
	if meetingID == "" {
		return
	}
	w, h := a.meeting.GridSize()
	go func() {
		arr, err := a.client.Arrange(a.ctx, meetingID, w*8, h*18)
		if err != nil {
			a.flash("Arrange failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.meeting.SetRoster(a.vm.Participants())
			a.meeting.Update(scaleArrangement(arr))
		})
	}()
}

// scaleArrangement maps pixel tile sizes back to character cells.
func scaleArrangement(arr api.Arrangement) api.Arrangement {
	arr.TileWidth /= 8
	arr.TileHeight /= 18
	return arr
}

func (a *App) page(fn func(context.Context, string, int, int) (api.Arrangement, error)) {
	meetingID := a.vm.ActiveMeetingID
	if meetingID == "" {
		return
	}
	w, h := a.meeting.GridSize()
	go func() {
		arr, err := fn(a.ctx, meetingID, w*8, h*18)
		if err != nil {
			a.flash("Page failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.meeting.Update(scaleArrangement(arr))
		})
	}()
}

func (a *App) setViewMode(mode string) {
	go func() {
		if err := a.client.SetViewMode(a.ctx, mode); err != nil {
			a.flash("View mode failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(a.refreshMeeting)
	}()
}

// pinShare pins the newest screen share, or the first camera tile when
// nobody is sharing.
func (a *App) pinShare() {
	meetingID := a.vm.ActiveMeetingID
	if meetingID == "" {
		return
	}
	go func() {
		_, tiles, err := a.client.Meeting(a.ctx, meetingID)
		if err != nil || len(tiles) == 0 {
			a.flash("Nothing to pin")
			return
		}
		target := tiles[0]
		if err := a.client.Pin(a.ctx, meetingID, target.UserID, target.Stream); err != nil {
			a.flash("Pin failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(a.refreshMeeting)
	}()
}

func (a *App) unpin() {
	meetingID := a.vm.ActiveMeetingID
	if meetingID == "" {
		return
	}
	go func() {
		if err := a.client.Unpin(a.ctx, meetingID); err != nil {
			a.flash("Unpin failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(a.refreshMeeting)
	}()
}

func (a *App) dismissBanner() {
	go func() {
		if err := a.client.DismissBanner(a.ctx); err != nil {
			a.flash("Dismiss failed: " + err.Error())
			return
		}
		_ = a.vm.LoadHealth(a.ctx)
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetHealth(a.vm.Health())
		})
	}()
}

func (a *App) flash(msg string) {
	a.vm.Flash.Set(msg, 5*time.Second)
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetFlash(a.vm.Flash.Get())
	})
}

// Run starts the TUI application.
func (a *App) Run() error {
	go func() {
		_ = a.vm.LoadRooms(a.ctx)
		_ = a.vm.LoadHealth(a.ctx)
		a.app.QueueUpdateDraw(func() {
			a.roomList.Update(a.vm.Rooms())
			a.statusBar.SetHealth(a.vm.Health())
		})
		a.startStreamLoop()
		a.startRefreshLoop()
	}()

	return a.app.Run()
}

// startStreamLoop drives refreshes from daemon push events, so the UI
// follows the store instead of waiting for the next poll tick.
func (a *App) startStreamLoop() {
	stream, err := a.client.Stream(a.ctx)
	if err != nil {
		a.flash("Push stream unavailable: " + err.Error())
		return
	}
	go func() {
		for env := range stream {
			switch {
			case strings.HasPrefix(env.Kind, "health."):
				_ = a.vm.LoadHealth(a.ctx)
				a.app.QueueUpdateDraw(func() {
					a.statusBar.SetHealth(a.vm.Health())
				})
			case strings.HasPrefix(env.Kind, "store.") || strings.HasPrefix(env.Kind, "profile."):
				a.refreshCurrent()
			}
		}
	}()
}

// refreshCurrent reloads the data behind the visible page.
func (a *App) refreshCurrent() {
	_ = a.vm.LoadRooms(a.ctx)
	page, _ := a.pages.GetFrontPage()
	switch page {
	case "room":
		if id := a.vm.ActiveRoomID; id != "" {
			_ = a.vm.LoadMessages(a.ctx, id)
		}
	case "meeting":
		if id := a.vm.ActiveMeetingID; id != "" {
			_ = a.vm.LoadMeeting(a.ctx, id)
		}
	}
	a.app.QueueUpdateDraw(func() {
		switch page {
		case "rooms":
			a.roomList.Update(a.vm.Rooms())
		case "room":
			a.thread.Update(a.vm.Messages())
		case "meeting":
			a.refreshMeeting()
		}
	})
}

func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		for {
			select {
			case <-ticker.C:
				_ = a.vm.LoadHealth(a.ctx)
				a.app.QueueUpdateDraw(func() {
					a.statusBar.SetHealth(a.vm.Health())
					a.statusBar.SetFlash(a.vm.Flash.Get())
				})
			case <-a.ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
