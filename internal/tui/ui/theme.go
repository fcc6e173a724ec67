package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TableHeaderFg    tcell.Color
	TableCursorFg    tcell.Color
	TableCursorBg    tcell.Color
	TitleColor       tcell.Color
	MutedColor       tcell.Color
	BannerFg         tcell.Color
	BannerBg         tcell.Color
	PinColor         tcell.Color
	ScreenTileColor  tcell.Color
}

// Apply installs the theme into tview's global styles. Call before any
// widget is constructed.
func (t *Theme) Apply() {
	tview.Styles.PrimitiveBackgroundColor = t.BgColor
	tview.Styles.PrimaryTextColor = t.FgColor
	tview.Styles.BorderColor = t.BorderColor
	tview.Styles.TitleColor = t.TitleColor
	tview.Styles.SecondaryTextColor = t.TableHeaderFg
}

// DefaultTheme returns the dark theme used by all views.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorCadetBlue,
		BorderColor:      tcell.ColorDodgerBlue,
		BorderFocusColor: tcell.ColorLightSkyBlue,
		TableHeaderFg:    tcell.ColorWhite,
		TableCursorFg:    tcell.ColorBlack,
		TableCursorBg:    tcell.ColorAqua,
		TitleColor:       tcell.ColorFuchsia,
		MutedColor:       tcell.ColorGray,
		BannerFg:         tcell.ColorBlack,
		BannerBg:         tcell.ColorOrange,
		PinColor:         tcell.ColorOrange,
		ScreenTileColor:  tcell.ColorAqua,
	}
}
