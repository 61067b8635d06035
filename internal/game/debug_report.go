package game

import (
	"fmt"
	"strings"
)

// DebugReport renders a multi-section text report of the pursuer and recent
// events, suitable for pasting into a bug ticket. lastTicks bounds the log
// excerpt.
func (s *Sim) DebugReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := s.tick
	fromTick := toTick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}

	pu := s.Pursuer
	var b strings.Builder
	fmt.Fprintf(&b, "--- manhunt debug report ---\n")
	fmt.Fprintf(&b, "phase=%s tick_range=[%d..%d]\n\n", s.Phase, fromTick, toTick)

	fmt.Fprintf(&b, "== pursuer ==\n")
	fmt.Fprintf(&b, "state=%s pos=(%.2f,%.2f,%.2f) facing=%.2frad speed=%.2f\n",
		pu.State, pu.Pos.X, pu.Pos.Y, pu.Pos.Z, pu.Facing, pu.Vel.HorizLen())
	target := "none"
	if pu.Target != nil {
		target = fmt.Sprintf("%s dist=%.2f stealth=%.0f",
			pu.Target.ID, Dist(pu.Pos, pu.Target.Pos), pu.Target.StealthScore)
	}
	fmt.Fprintf(&b, "target=%s\n", target)
	fmt.Fprintf(&b, "last_known=(%.2f,%.2f) search_elapsed=%.1fs patrol_index=%d stuck_recoveries=%d\n\n",
		pu.LastKnownTargetPos.X, pu.LastKnownTargetPos.Z,
		pu.searchElapsed, pu.patrolIndex, pu.stuckRecoveries)

	fmt.Fprintf(&b, "== steering ==\n")
	sd := pu.LastSteer()
	for i := range sd.Offsets {
		marker := " "
		if i == sd.ChosenIdx {
			marker = "*"
		}
		state := "clear"
		if sd.Hits[i] {
			state = "hit"
		}
		fmt.Fprintf(&b, "%s feeler %+5.1fdeg  dist=%.2f  %s\n",
			marker, sd.Offsets[i]*180/3.14159265, sd.Distances[i], state)
	}
	fmt.Fprintf(&b, "speed_scale=%.2f\n\n", sd.SpeedScale)

	fmt.Fprintf(&b, "== participants ==\n")
	for _, p := range s.Roster.Participants() {
		status := "alive"
		if !p.Alive {
			status = "caught"
		}
		fmt.Fprintf(&b, "%-6s %s stealth=%-3.0f dist=%.2f crouch=%v run=%v hidden=%v\n",
			p.ID, status, p.StealthScore, Dist(pu.Pos, p.Pos),
			p.Crouching, p.Running, p.InHideSpot)
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "== log (last %d ticks) ==\n", toTick-fromTick+1)
	excerpt := s.SimLog.FormatRange(fromTick, toTick)
	if excerpt == "" {
		b.WriteString("(no entries)\n")
	} else {
		b.WriteString(excerpt)
	}

	b.WriteByte('\n')
	b.WriteString(s.SimLog.Summary(toTick, pu, s.Roster.Participants()))
	return b.String()
}
