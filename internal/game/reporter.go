package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour
// summaries (~10s at 60 TPS).
const reportWindowTicks = 600

// reportEveryTicks is how often a snapshot is recorded.
const reportEveryTicks = 30

// SimReport is a snapshot of the simulation at one tick.
type SimReport struct {
	Tick int

	State  PursuerState
	Target string // "" when none
	Pos    Vec3

	Alive  int
	Caught int

	// Cumulative counters since sim start.
	Captures        int
	StuckRecoveries int

	AvgStealth float64
	MaxStealth float64
}

// SimReporter collects periodic reports and summarises behaviour over a
// sliding window. Used by scenario tests and the headless report binary.
type SimReporter struct {
	history     []SimReport
	windowTicks int
	captures    int
}

func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks}
}

// Observe is called once per tick; it records a snapshot on the reporting
// cadence.
func (r *SimReporter) Observe(s *Sim) {
	if s.CurrentTick()%reportEveryTicks != 0 {
		return
	}

	rep := SimReport{
		Tick:            s.CurrentTick(),
		State:           s.Pursuer.State,
		Pos:             s.Pursuer.Pos,
		StuckRecoveries: s.Pursuer.StuckRecoveries(),
	}
	if s.Pursuer.Target != nil {
		rep.Target = s.Pursuer.Target.ID
	}

	var sum float64
	for _, p := range s.Roster.Participants() {
		if !p.Alive {
			rep.Caught++
			continue
		}
		rep.Alive++
		sum += p.StealthScore
		if p.StealthScore > rep.MaxStealth {
			rep.MaxStealth = p.StealthScore
		}
	}
	if rep.Alive > 0 {
		rep.AvgStealth = sum / float64(rep.Alive)
	}
	rep.Captures = s.SimLog.CountCategory("capture", "")

	r.history = append(r.history, rep)
}

// Latest returns the most recent snapshot, or false when none exists.
func (r *SimReporter) Latest() (SimReport, bool) {
	if len(r.history) == 0 {
		return SimReport{}, false
	}
	return r.history[len(r.history)-1], true
}

// FormatLatest renders the most recent snapshot as a one-line status.
func (r *SimReporter) FormatLatest() string {
	rep, ok := r.Latest()
	if !ok {
		return "(no reports)"
	}
	target := rep.Target
	if target == "" {
		target = "none"
	}
	return fmt.Sprintf(
		"[T=%03d] pursuer: state=%s target=%s alive=%d caught=%d captures=%d stuck=%d avg_stealth=%.0f",
		rep.Tick, rep.State, target, rep.Alive, rep.Caught,
		rep.Captures, rep.StuckRecoveries, rep.AvgStealth)
}

// WindowReport aggregates behaviour over the trailing window.
type WindowReport struct {
	FromTick, ToTick int

	TicksInState map[PursuerState]int // snapshot counts per state
	Captures     int                  // captures within the window
	Stuck        int                  // recoveries within the window
	Distance     float64              // pursuer distance travelled between snapshots
}

// WindowSummary aggregates the trailing window of snapshots, or nil when
// there is not enough history.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) < 2 {
		return nil
	}
	last := r.history[len(r.history)-1]
	from := last.Tick - r.windowTicks
	wr := &WindowReport{
		ToTick:       last.Tick,
		FromTick:     from,
		TicksInState: map[PursuerState]int{},
	}

	var prev *SimReport
	var firstCaptures, firstStuck int
	seeded := false
	for i := range r.history {
		rep := &r.history[i]
		if rep.Tick < from {
			continue
		}
		if !seeded {
			firstCaptures = rep.Captures
			firstStuck = rep.StuckRecoveries
			wr.FromTick = rep.Tick
			seeded = true
		}
		wr.TicksInState[rep.State]++
		if prev != nil {
			wr.Distance += HorizDist(prev.Pos, rep.Pos)
		}
		prev = rep
	}
	if prev != nil {
		wr.Captures = prev.Captures - firstCaptures
		wr.Stuck = prev.StuckRecoveries - firstStuck
	}
	return wr
}

// Format renders the window report block.
func (wr *WindowReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Window T=%d..%d ---\n", wr.FromTick, wr.ToTick)
	fmt.Fprintf(&sb, "states: ")
	for _, st := range []PursuerState{StateIdle, StatePatrolling, StateChasing, StateSearching} {
		if n := wr.TicksInState[st]; n > 0 {
			fmt.Fprintf(&sb, "%s=%d  ", st, n)
		}
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "captures=%d stuck_recoveries=%d distance=%.1f\n",
		wr.Captures, wr.Stuck, wr.Distance)
	return sb.String()
}
