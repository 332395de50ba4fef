// Command trackcheck builds scripted track layouts and prints the placements
// and connections the engine discovers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"

	"track-planner/internal/catalog"
	"track-planner/internal/config"
	"track-planner/internal/layout"
	"track-planner/internal/piece"
	"track-planner/internal/snap"
	"track-planner/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Path to config TOML (default: user config dir)")
	scenario := flag.String("scenario", "all", "Layout to build: run, loop, turnout or all")
	count := flag.Int("n", 4, "Number of straights in the run scenario")
	verbose := flag.Bool("v", false, "Log engine decisions to stderr")
	watch := flag.Bool("watch", false, "Re-run when the config file changes")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("trackcheck %s\n", version.String())
		return
	}

	if *verbose {
		layout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	order := []string{"run", "loop", "turnout"}
	if *scenario != "all" {
		if !knownScenario(*scenario) {
			fmt.Fprintf(os.Stderr, "Unknown scenario %q (want run, loop, turnout or all)\n", *scenario)
			os.Exit(1)
		}
		order = []string{*scenario}
	}

	ok := check(cfg, order, *count)
	if !*watch {
		if !ok {
			os.Exit(1)
		}
		return
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	w, err := config.NewWatcher(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to watch config: %v\n", err)
		os.Exit(1)
	}
	w.OnChange(func(cfg config.Config) {
		fmt.Printf("\n--- %s changed ---\n", w.Path())
		check(cfg, order, *count)
	})
	w.OnError(func(err error) {
		fmt.Fprintf(os.Stderr, "Config reload failed: %v\n", err)
	})
	w.Start()
	fmt.Printf("\nWatching %s (Ctrl-C to stop)\n", w.Path())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	w.Stop()
}

func knownScenario(name string) bool {
	switch name {
	case "run", "loop", "turnout":
		return true
	}
	return false
}

// check builds each named scenario on a fresh layout and prints the result.
// It reports whether every scenario succeeded.
func check(cfg config.Config, order []string, count int) bool {
	lib, err := cfg.Library()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build catalog: %v\n", err)
		return false
	}

	fmt.Printf("Snap radius: %.2f  Coincidence tolerance: %.2f\n", cfg.SnapRadius, cfg.CoincidenceTolerance)
	fmt.Printf("Catalog: %s\n", strings.Join(lib.Names(), ", "))

	loopPieces := int(math.Round(360 / cfg.CurveAngle))
	ok := true
	for _, name := range order {
		l := layout.New(cfg)
		fmt.Printf("\n=== %s ===\n", name)
		var err error
		switch name {
		case "run":
			err = buildRun(l, lib, count)
		case "loop":
			err = buildLoop(l, lib, loopPieces)
		case "turnout":
			err = buildTurnoutLoop(l, lib, loopPieces)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scenario %s failed: %v\n", name, err)
			ok = false
			continue
		}
		report(l)
	}
	return ok
}

func buildRun(l *layout.Layout, lib *catalog.Library, n int) error {
	def, err := lib.Get(catalog.ShortStraight)
	if err != nil {
		return err
	}
	prev, _ := l.Place(def, snap.Pose{})
	for i := 1; i < n; i++ {
		next, _, err := l.PlaceSnapped(def, "A", prev.ID, "B", 0)
		if err != nil {
			return err
		}
		prev = next
	}
	return nil
}

func buildLoop(l *layout.Layout, lib *catalog.Library, pieces int) error {
	def, err := lib.Get(catalog.Curve45)
	if err != nil {
		return err
	}
	return closeLoop(l, pieces, func(int) (*piece.Definition, string) { return def, "B" })
}

// buildTurnoutLoop replaces one curve of the loop with a turnout whose branch
// carries the loop on.
func buildTurnoutLoop(l *layout.Layout, lib *catalog.Library, pieces int) error {
	curve, err := lib.Get(catalog.Curve45)
	if err != nil {
		return err
	}
	turnout, err := lib.Get(catalog.Turnout)
	if err != nil {
		return err
	}
	return closeLoop(l, pieces, func(i int) (*piece.Definition, string) {
		if i == pieces/2 {
			return turnout, "C"
		}
		return curve, "B"
	})
}

// closeLoop chains pieces, each joined by port A to the exit of the one
// before it. next returns the i'th definition and its exit port.
func closeLoop(l *layout.Layout, pieces int, next func(i int) (*piece.Definition, string)) error {
	def, exit := next(0)
	prev, _ := l.Place(def, snap.Pose{})
	for i := 1; i < pieces; i++ {
		var nextExit string
		def, nextExit = next(i)
		p, _, err := l.PlaceSnapped(def, "A", prev.ID, exit, 0)
		if err != nil {
			return err
		}
		prev, exit = p, nextExit
	}
	if !l.Network().HasLoop() {
		return fmt.Errorf("loop of %d pieces did not close", pieces)
	}
	return nil
}

func report(l *layout.Layout) {
	pieces := l.Pieces()
	fmt.Printf("%-20s %10s %10s %8s  %s\n", "ID", "X", "Y", "Rot", "Connections")
	for _, p := range pieces {
		var links []string
		for _, portID := range p.OccupiedPorts() {
			remote, _ := p.Connection(portID)
			links = append(links, portID+"->"+remote)
		}
		fmt.Printf("%-20s %10.2f %10.2f %8.0f  %s\n",
			p.ID, p.Position.X, p.Position.Y, p.Rotation, strings.Join(links, " "))
	}

	if box, ok := l.Bounds(); ok {
		fmt.Printf("\nExtent: %.2f x %.2f at (%.2f, %.2f)\n", box.Width, box.Height, box.X, box.Y)
	}

	net := l.Network()
	fmt.Printf("Links: %d\n", net.Links())
	for i, group := range net.Groups() {
		fmt.Printf("Group %d: %s\n", i+1, strings.Join(group, ", "))
	}
	for i, loop := range net.Loops() {
		fmt.Printf("Loop %d: %d pieces\n", i+1, len(loop))
	}
	if dangling := piece.Dangling(pieces); len(dangling) > 0 {
		fmt.Printf("WARNING: %d one-sided connection entries\n", len(dangling))
	}
}
