package game

// Participant is one hiding player as seen by this core: live pose plus the
// posture and concealment flags the stealth model reads. Position and
// velocity are owned by the participant collaborator; StealthScore is
// recomputed from scratch every tick by the stealth model and carries no
// cross-tick memory.
type Participant struct {
	ID  string
	Pos Vec3
	Vel Vec3

	Crouching  bool
	Running    bool
	InHideSpot bool

	StealthScore float64
	Health       float64
	Alive        bool

	// Scripted movement used by the harness and viewer in place of real
	// player input. Nil leaves the participant stationary.
	script *moveScript
}

// ParticipantSource is the directory this core consumes: the live roster
// plus the damage entry point used to resolve captures.
type ParticipantSource interface {
	Participants() []*Participant
	Damage(id string, amount float64)
}

// Roster is the in-process ParticipantSource used headless.
type Roster struct {
	list []*Participant
}

func NewRoster() *Roster {
	return &Roster{}
}

// Add registers a participant. Later lookups are by ID.
func (r *Roster) Add(p *Participant) {
	r.list = append(r.list, p)
}

// Participants returns the roster in insertion order. Perception relies on
// this order being stable for its closest-target tie-break.
func (r *Roster) Participants() []*Participant {
	return r.list
}

// Find returns the participant with the given ID, or nil.
func (r *Roster) Find(id string) *Participant {
	for _, p := range r.list {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Damage applies damage to a participant, marking it dead at zero health.
func (r *Roster) Damage(id string, amount float64) {
	p := r.Find(id)
	if p == nil {
		return
	}
	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		p.Alive = false
	}
}

// moveScript walks a participant along a cyclic waypoint list at a fixed
// speed. It emulates the player input this core normally observes from the
// participant collaborator.
type moveScript struct {
	waypoints []Vec3
	index     int
	speed     float64
}

// advance moves the participant toward its current waypoint and updates
// velocity so the stealth and audibility models see real motion.
func (p *Participant) advance(dt float64) {
	if p.script == nil || len(p.script.waypoints) == 0 || !p.Alive {
		p.Vel = Vec3{}
		return
	}
	s := p.script
	target := s.waypoints[s.index]
	to := target.Sub(p.Pos)
	distLeft := to.HorizLen()
	if distLeft < 0.2 {
		s.index = (s.index + 1) % len(s.waypoints)
		target = s.waypoints[s.index]
		to = target.Sub(p.Pos)
	}
	dir := Vec3{X: to.X, Z: to.Z}.Norm()
	p.Vel = dir.Scale(s.speed)
	p.Pos = p.Pos.Add(p.Vel.Scale(dt))
}
