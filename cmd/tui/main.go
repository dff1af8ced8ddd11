// Command tui is a minimal terminal host for the simulation kernel: it
// ticks on a timer and renders agents, fire, smoke, and firefighters as
// coloured cells. Keys: space pause/resume, f start a fire at the venue
// centre, e trigger evacuation, r reset, q quit.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"crowdsim/internal/agents"
	"crowdsim/internal/kernel"
	"crowdsim/internal/layout"
	"crowdsim/internal/logging"
	"crowdsim/internal/simconfig"
)

const frameInterval = 50 * time.Millisecond

func main() {
	layoutPath := flag.String("layout", "", "venue layout JSON file (default: built-in demo layout)")
	seed := flag.String("seed", "tui", "deterministic run seed")
	n := flag.Int("n", 120, "participant count")
	flag.Parse()

	venue := simconfig.DefaultVenueLayout()
	if *layoutPath != "" {
		data, err := os.ReadFile(*layoutPath)
		if err != nil {
			log.Fatalf("read layout: %v", err)
		}
		doc, err := layout.Unmarshal(data)
		if err != nil {
			log.Fatalf("parse layout: %v", err)
		}
		venue = doc.ToVenueLayout()
	}

	cfg := simconfig.DefaultConfig()
	cfg.Seed = *seed
	cfg.N = *n

	k := kernel.New(cfg, venue, logging.NopPublisher())
	k.Start()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("new screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("init screen: %v", err)
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Rune() == 'q':
					return
				case ev.Rune() == ' ':
					if k.Running() {
						k.Pause()
					} else {
						k.Start()
					}
				case ev.Rune() == 'f':
					k.StartFire(venue.Width/2, venue.Height/2)
				case ev.Rune() == 'e':
					k.TriggerEvacuation()
				case ev.Rune() == 'r':
					k.Reset()
					k.Start()
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			k.Tick(dt)
			draw(screen, k.GetFrame(), venue)
		}
	}
}

var (
	styleDefault     = tcell.StyleDefault
	styleAgent       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleEvacuating  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleFire        = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleSmoke       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFirefighter = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleExitMark    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

func draw(screen tcell.Screen, frame kernel.FrameSnapshot, venue simconfig.VenueLayout) {
	screen.Clear()

	// One terminal cell per venue metre, leaving the top row for status.
	const originY = 1

	for row := 0; row < frame.FireRows; row++ {
		for col := 0; col < frame.FireCols; col++ {
			if frame.FireGrid[row][col] {
				screen.SetContent(col, originY+row, '#', nil, styleFire)
			} else if frame.Smoke[row][col] > 0.15 {
				screen.SetContent(col, originY+row, '~', nil, styleSmoke)
			}
		}
	}

	for _, e := range venue.Exits {
		screen.SetContent(int(e.X), originY+int(e.Y), 'X', nil, styleExitMark)
	}
	for _, e := range venue.Entrances {
		screen.SetContent(int(e.X), originY+int(e.Y), 'E', nil, styleExitMark)
	}

	for _, a := range frame.Agents {
		style := styleAgent
		if a.State == agents.StateEvacuating {
			style = styleEvacuating
		}
		screen.SetContent(int(a.X), originY+int(a.Y), 'o', nil, style)
	}
	for _, f := range frame.Firefighters {
		mark := 'W'
		if f.Extinguishing {
			mark = '*'
		}
		screen.SetContent(int(f.X), originY+int(f.Y), mark, nil, styleFirefighter)
	}

	status := fmt.Sprintf("t=%6.1fs agents=%d exited=%d peak=%.2f p/m2 evac=%v burning=%d  [space] pause [f]ire [e]vac [r]eset [q]uit",
		frame.SimTime, len(frame.Agents), frame.Metrics.EgressCount, frame.Metrics.PeakDensity, frame.Evacuating, frame.BurningCellCount)
	for i, r := range status {
		screen.SetContent(i, 0, r, nil, styleDefault)
	}

	screen.Show()
}
