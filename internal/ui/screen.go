package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Region names.
const (
	RegionTimer      = "timer"
	RegionQuestion   = "question"
	RegionNickname   = "nickname"
	RegionHighScores = "highscores"
)

const (
	ansiClear      = "\033[H\033[2J"
	ansiSaveCursor = "\0337"
	ansiLoadCursor = "\0338"
	ansiTopLine    = "\033[1;1H\033[2K"
)

// Region is one visual area of the screen.
type Region struct {
	name    string
	live    bool
	visible bool
	lines   []string
	screen  *Screen
}

func (r *Region) Name() string { return r.name }

// Visible reports whether the region is currently shown.
func (r *Region) Visible() bool {
	r.screen.mu.Lock()
	defer r.screen.mu.Unlock()
	return r.visible
}

// Lines returns a copy of the region content.
func (r *Region) Lines() []string {
	r.screen.mu.Lock()
	defer r.screen.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Text joins the region content with newlines.
func (r *Region) Text() string {
	return strings.Join(r.Lines(), "\n")
}

func (r *Region) Show() { r.screen.update(r, func() { r.visible = true }) }
func (r *Region) Hide() { r.screen.update(r, func() { r.visible = false }) }

// Set replaces the region content.
func (r *Region) Set(lines ...string) {
	r.screen.update(r, func() { r.lines = append([]string(nil), lines...) })
}

// Screen holds the regions and redraws them on change. With ANSI enabled the
// live region (the timer badge) is patched in place on the first row; every
// other change repaints the whole frame. Without ANSI, changes to visible
// regions are appended as plain text and live updates are skipped.
type Screen struct {
	mu      sync.Mutex
	out     io.Writer
	ansi    bool
	order   []*Region
	byName  map[string]*Region
	batched int
	dirty   bool
}

// NewScreen creates the four quiz regions in drawing order.
func NewScreen(out io.Writer, ansi bool) *Screen {
	if out == nil {
		out = io.Discard
	}
	s := &Screen{out: out, ansi: ansi, byName: make(map[string]*Region)}
	s.add(RegionTimer, true)
	s.add(RegionQuestion, false)
	s.add(RegionNickname, false)
	s.add(RegionHighScores, false)
	return s
}

func (s *Screen) add(name string, live bool) {
	r := &Region{name: name, live: live, screen: s}
	s.order = append(s.order, r)
	s.byName[name] = r
}

// Region returns the named region, or nil when unknown.
func (s *Screen) Region(name string) *Region {
	return s.byName[name]
}

// Batch applies fn and repaints once afterwards.
func (s *Screen) Batch(fn func()) {
	s.mu.Lock()
	s.batched++
	s.mu.Unlock()

	fn()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batched--
	if s.batched == 0 && s.dirty {
		s.dirty = false
		s.repaintLocked(nil)
	}
}

func (s *Screen) update(r *Region, mutate func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasVisible := r.visible
	mutate()
	if !r.visible && !wasVisible {
		return
	}
	if s.batched > 0 {
		s.dirty = true
		return
	}
	if r.live && r.visible && wasVisible {
		s.patchLiveLocked(r)
		return
	}
	s.repaintLocked(r)
}

func (s *Screen) patchLiveLocked(r *Region) {
	if !s.ansi {
		return
	}
	fmt.Fprint(s.out, ansiSaveCursor+ansiTopLine+strings.Join(r.lines, " ")+ansiLoadCursor)
}

// repaintLocked redraws the frame. In plain mode only the changed region is
// printed; changed is nil after a batch, which prints every visible region.
func (s *Screen) repaintLocked(changed *Region) {
	var b strings.Builder
	if s.ansi {
		b.WriteString(ansiClear)
		for _, r := range s.order {
			if !r.visible {
				continue
			}
			if r.live {
				b.WriteString(strings.Join(r.lines, " "))
				b.WriteString("\n\n")
				continue
			}
			writeLines(&b, r.lines)
		}
		fmt.Fprint(s.out, b.String())
		return
	}
	for _, r := range s.order {
		if !r.visible || (changed != nil && r != changed) {
			continue
		}
		writeLines(&b, r.lines)
	}
	fmt.Fprint(s.out, b.String())
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(lines) > 0 {
		b.WriteByte('\n')
	}
}
