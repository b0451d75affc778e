package main

import (
	"fmt"
	"strings"

	"deferred-engine/sprites"
)

// DebugOverlay collects the lines shown in the top-left corner.
type DebugOverlay struct {
	Visible bool
	lines   []string
}

func (do *DebugOverlay) AddLine(format string, args ...interface{}) {
	do.lines = append(do.lines, fmt.Sprintf(format, args...))
}

func (do *DebugOverlay) Clear() {
	do.lines = do.lines[:0]
}

func (do *DebugOverlay) GetText() string {
	return strings.Join(do.lines, "\n")
}

// Draw renders the collected lines with text and clears them for the next
// frame.
func (do *DebugOverlay) Draw(text *sprites.Text) {
	if do.Visible && len(do.lines) > 0 {
		text.Render(do.GetText())
	}
	do.Clear()
}
