// Package monitor shows a live readall table of the header pins in a
// terminal UI, with level traces for a few selected pins.
package monitor

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/exp/slices"
	"lautenbacher.net/gowiring/logging"
	"lautenbacher.net/gowiring/util"
	"lautenbacher.net/gowiring/wiring"
)

const viewerTitle = " gowiring readall "

// Source is what the monitor polls.
type Source interface {
	ReadAll() []wiring.HeaderPin
}

type snapshot struct {
	pins    string
	history string
}

// Monitor polls a Source and renders it.
type Monitor struct {
	src        Source
	refresh    time.Duration
	historyLen int
	watched    []int

	mu      sync.Mutex
	history map[int]*deque.Deque[wiring.Level]
	latest  *util.Latest[snapshot]

	app     *tview.Application
	table   *tview.TextView
	traces  *tview.TextView
	logPane *tview.TextView
}

// New prepares a monitor. watched lists header positions whose level
// history is traced; duplicates and order don't matter.
func New(src Source, refresh time.Duration, historyLen int, watched []int) *Monitor {
	w := slices.Clone(watched)
	slices.Sort(w)
	w = slices.Compact(w)
	m := &Monitor{
		src:        src,
		refresh:    refresh,
		historyLen: max(historyLen, 1),
		watched:    w,
		history:    make(map[int]*deque.Deque[wiring.Level]),
		latest:     util.NewLatest[snapshot](),
	}
	for _, phys := range w {
		q := new(deque.Deque[wiring.Level])
		q.Grow(m.historyLen)
		m.history[phys] = q
	}
	return m
}

// Sample reads the source once, records watched levels and publishes the
// rendered result for the UI.
func (m *Monitor) Sample() {
	pins := m.src.ReadAll()

	m.mu.Lock()
	for _, phys := range m.watched {
		if phys < 1 || phys > len(pins) {
			continue
		}
		q := m.history[phys]
		if q.Len() == m.historyLen {
			q.PopFront()
		}
		q.PushBack(pins[phys-1].Level)
	}
	hist := RenderHistory(m.watched, pins, m.history)
	m.mu.Unlock()

	m.latest.Publish(snapshot{pins: RenderTable(pins), history: hist})
}

func (m *Monitor) poll(ctx context.Context) {
	ticker := time.NewTicker(m.refresh)
	defer ticker.Stop()
	m.Sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sample()
		}
	}
}

func (m *Monitor) setupUI(stop func()) {
	m.app = tview.NewApplication()

	m.table = tview.NewTextView()
	m.table.SetBorder(true).SetTitle(viewerTitle).SetTitleColor(tcell.ColorLightBlue)
	m.table.SetBackgroundColor(tcell.ColorDarkSlateGray)

	m.traces = tview.NewTextView()
	m.traces.SetDynamicColors(true)
	m.traces.SetBorder(true).SetTitle(" Levels ").SetTitleColor(tcell.ColorLightBlue)
	m.traces.SetBackgroundColor(tcell.ColorDarkSlateGray)

	m.logPane = tview.NewTextView()
	m.logPane.SetScrollable(true).ScrollToEnd()
	m.logPane.SetChangedFunc(func() { m.app.Draw() })
	m.logPane.SetBorder(true).SetTitle(" Log (q to quit) ").SetTitleColor(tcell.ColorLightBlue)

	layout := tview.NewFlex().SetDirection(tview.FlexRow)
	layout.AddItem(m.table, wiring.HeaderPins/2+8, 1, true)
	if len(m.watched) > 0 {
		layout.AddItem(m.traces, len(m.watched)+2, 1, false)
	}
	layout.AddItem(m.logPane, 0, 1, false)

	m.app.SetRoot(layout, true).SetFocus(m.table)
	m.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			stop()
			return nil
		}
		if event.Key() == tcell.KeyEscape {
			stop()
			return nil
		}
		return event
	})
}

// Run shows the UI until ctx is done or the user quits. Log output goes to
// a pane of the UI while it runs.
func (m *Monitor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.setupUI(cancel)

	if err := logging.SetOutput(m.logPane); err != nil {
		slog.Warn("Can't redirect log output to the monitor", "error", err)
	}
	defer logging.SetOutput(os.Stderr)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.poll(ctx)
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				m.app.Stop()
				return
			case <-m.latest.C():
				snap := m.latest.Value()
				m.app.QueueUpdateDraw(func() {
					m.table.SetText(snap.pins)
					m.traces.SetText(snap.history)
				})
			}
		}
	}()

	slog.Info("Monitor started", "refresh", m.refresh.String(), "watched", m.watched)
	err := m.app.Run()
	cancel()
	wg.Wait()
	slog.Info("Monitor stopped")
	return err
}
