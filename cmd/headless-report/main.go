package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/kverne/manhunt/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	firstDetectionTick int
	firstChaseTick     int
	firstSearchTick    int
	firstCaptureTick   int
	firstStuckTick     int

	stateChanges    int
	detections      int
	audibles        int
	captures        int
	stuckRecoveries int

	survivors int
	caught    int

	windowSummary *game.WindowReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var planned bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 7200, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "yard-chase", "scenario name")
	flag.BoolVar(&planned, "planned", false, "use planned-path navigation for patrol/search travel")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if scenario != "yard-chase" && scenario != "hidden-camp" {
		fmt.Printf("error: unsupported scenario %q (supported: yard-chase, hidden-camp)\n", scenario)
		return
	}

	fmt.Printf("=== Headless Pursuit Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d planned=%v\n\n",
		scenario, runs, ticks, seedBase, seedStep, planned)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runScenario(scenario, i+1, seed, ticks, planned)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func runScenario(name string, runIndex int, seed int64, ticks int, planned bool) runStats {
	navMode := game.NavReactive
	if planned {
		navMode = game.NavPlanned
	}

	opts := []game.SimOption{
		game.WithBounds(game.Vec3{X: 0, Y: -1, Z: 0}, game.Vec3{X: 40, Y: 6, Z: 24}),
		game.WithSeed(seed),
		game.WithObstacle("shed", game.Vec3{X: 8, Z: 6}, game.Vec3{X: 12, Y: 2.5, Z: 9}),
		game.WithObstacle("wall", game.Vec3{X: 18, Z: 12}, game.Vec3{X: 30, Y: 2, Z: 12.8}),
		game.WithPursuer(game.Vec3{X: 20, Z: 4}, game.PursuerConfig{NavMode: navMode}),
	}

	switch name {
	case "yard-chase":
		opts = append(opts,
			game.WithScriptedParticipant("h1", 1.8, false,
				game.Vec3{X: 4, Z: 4}, game.Vec3{X: 4, Z: 20}, game.Vec3{X: 14, Z: 20}),
			game.WithScriptedParticipant("h2", 3.2, true,
				game.Vec3{X: 36, Z: 20}, game.Vec3{X: 22, Z: 20}, game.Vec3{X: 36, Z: 6}),
		)
	case "hidden-camp":
		opts = append(opts,
			game.WithZone(game.SphereZone("bush", game.Vec3{X: 15, Z: 18}, 2.5, 25)),
			game.WithHiddenParticipant("h1", game.Vec3{X: 15, Z: 18}),
			game.WithHiddenParticipant("h2", game.Vec3{X: 34, Z: 21}),
		)
	}

	sim := game.NewSim(opts...)
	sim.RunTicks(ticks)

	stats := runStats{
		runIndex:           runIndex,
		seed:               seed,
		firstDetectionTick: firstTick(sim.SimLog, "percept", "visible", ""),
		firstChaseTick:     firstTick(sim.SimLog, "state", "change", "chasing"),
		firstSearchTick:    firstTick(sim.SimLog, "state", "change", "searching"),
		firstCaptureTick:   firstTick(sim.SimLog, "capture", "caught", ""),
		firstStuckTick:     firstTick(sim.SimLog, "stuck", "recover", ""),
		stateChanges:       sim.SimLog.CountCategory("state", "change"),
		detections:         sim.SimLog.CountCategory("percept", "visible"),
		audibles:           sim.SimLog.CountCategory("percept", "audible"),
		captures:           sim.SimLog.CountCategory("capture", ""),
		stuckRecoveries:    sim.Pursuer.StuckRecoveries(),
		windowSummary:      sim.Reporter.WindowSummary(),
	}
	for _, p := range sim.Roster.Participants() {
		if p.Alive {
			stats.survivors++
		} else {
			stats.caught++
		}
	}
	return stats
}

func firstTick(sl *game.SimLog, category, key, contains string) int {
	for _, e := range sl.Filter(category, key) {
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_detection=%d first_chase=%d first_search=%d first_capture=%d first_stuck=%d\n",
		rs.firstDetectionTick, rs.firstChaseTick, rs.firstSearchTick, rs.firstCaptureTick, rs.firstStuckTick)
	fmt.Printf("event_totals: state_change=%d detections=%d audibles=%d captures=%d stuck_recoveries=%d\n",
		rs.stateChanges, rs.detections, rs.audibles, rs.captures, rs.stuckRecoveries)
	fmt.Printf("outcome: survivors=%d caught=%d\n", rs.survivors, rs.caught)
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalState := 0
	totalDetections := 0
	totalCaptures := 0
	totalStuck := 0
	totalCaught := 0
	totalSurvivors := 0

	detectionTicks := make([]int, 0, len(all))
	captureTicks := make([]int, 0, len(all))

	for _, rs := range all {
		totalState += rs.stateChanges
		totalDetections += rs.detections
		totalCaptures += rs.captures
		totalStuck += rs.stuckRecoveries
		totalCaught += rs.caught
		totalSurvivors += rs.survivors
		if rs.firstDetectionTick >= 0 {
			detectionTicks = append(detectionTicks, rs.firstDetectionTick)
		}
		if rs.firstCaptureTick >= 0 {
			captureTicks = append(captureTicks, rs.firstCaptureTick)
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("avg_events_per_run: state_change=%.1f detections=%.1f captures=%.1f stuck_recoveries=%.1f\n",
		avg(totalState, len(all)), avg(totalDetections, len(all)),
		avg(totalCaptures, len(all)), avg(totalStuck, len(all)))
	fmt.Printf("outcomes: caught=%d survivors=%d capture_rate=%.0f%%\n",
		totalCaught, totalSurvivors, captureRate(totalCaught, totalCaught+totalSurvivors))
	fmt.Printf("first_detection: reached_in=%d/%d median_tick=%d\n",
		len(detectionTicks), len(all), median(detectionTicks))
	fmt.Printf("first_capture: reached_in=%d/%d median_tick=%d\n",
		len(captureTicks), len(all), median(captureTicks))
}

func avg(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// captureRate returns the percentage of participants caught, 0 when no
// participants existed.
func captureRate(caught, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(caught) / float64(total)
}

// median returns the median of ticks, or -1 for an empty slice.
func median(ticks []int) int {
	if len(ticks) == 0 {
		return -1
	}
	sorted := append([]int(nil), ticks...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}
