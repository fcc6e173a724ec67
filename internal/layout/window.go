package layout

// Window is a generic pagination window over a list of items, reused for
// grid overflow and the meeting carousel sidebar. The index is clamped
// to [0, totalItems−pageSize] on every recomputation, so a shrinking
// item list can never leave the window out of range.
type Window struct {
	index int
}

// View is the computed state of a window for the current item count.
type View struct {
	Index    int
	PageSize int
	// AtStart and AtEnd drive the previous/next availability flags.
	AtStart bool
	AtEnd   bool
}

// View clamps the window against the current totals and returns the
// resulting view. It mutates only the stored index (the clamp).
func (w *Window) View(totalItems, pageSize int) View {
	upper := totalItems - pageSize
	if upper < 0 {
		upper = 0
	}
	if w.index > upper {
		w.index = upper
	}
	if w.index < 0 {
		w.index = 0
	}
	return View{
		Index:    w.index,
		PageSize: pageSize,
		AtStart:  w.index == 0,
		AtEnd:    w.index == upper,
	}
}

// Prev steps the window back by min(desiredStep, totalItems), a no-op at
// the lower bound.
func (w *Window) Prev(totalItems, pageSize, desiredStep int) View {
	step := desiredStep
	if step > totalItems {
		step = totalItems
	}
	w.View(totalItems, pageSize)
	w.index -= step
	if w.index < 0 {
		w.index = 0
	}
	return w.View(totalItems, pageSize)
}

// Next steps the window forward by min(desiredStep, totalItems), a
// no-op at the upper bound.
func (w *Window) Next(totalItems, pageSize, desiredStep int) View {
	step := desiredStep
	if step > totalItems {
		step = totalItems
	}
	v := w.View(totalItems, pageSize)
	upper := totalItems - pageSize
	if upper < 0 {
		upper = 0
	}
	w.index = v.Index + step
	if w.index > upper {
		w.index = upper
	}
	return w.View(totalItems, pageSize)
}
