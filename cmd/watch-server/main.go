package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/kverne/manhunt/internal/feed"
	"github.com/kverne/manhunt/internal/game"
)

// watch-server runs the pursuit simulation headless and broadcasts pursuer
// pose snapshots and capture events to websocket spectators on /watch.
func main() {
	var addr string
	var seed int64
	var poseHz int
	var planned bool

	flag.StringVar(&addr, "addr", ":8474", "listen address")
	flag.Int64Var(&seed, "seed", 42, "RNG seed")
	flag.IntVar(&poseHz, "pose-hz", 10, "pose broadcasts per second")
	flag.BoolVar(&planned, "planned", false, "use planned-path navigation")
	flag.Parse()

	if poseHz <= 0 {
		fmt.Println("error: -pose-hz must be > 0")
		return
	}

	navMode := game.NavReactive
	if planned {
		navMode = game.NavPlanned
	}

	hub := feed.NewHub(log.Default())

	sim := game.NewSim(
		game.WithBounds(game.Vec3{X: 0, Y: -1, Z: 0}, game.Vec3{X: 40, Y: 6, Z: 24}),
		game.WithSeed(seed),
		game.WithObstacle("shed", game.Vec3{X: 8, Z: 6}, game.Vec3{X: 12, Y: 2.5, Z: 9}),
		game.WithObstacle("wall", game.Vec3{X: 18, Z: 12}, game.Vec3{X: 30, Y: 2, Z: 12.8}),
		game.WithZone(game.SphereZone("bush", game.Vec3{X: 15, Z: 18}, 2.5, 25)),
		game.WithScriptedParticipant("h1", 1.8, false,
			game.Vec3{X: 4, Z: 4}, game.Vec3{X: 4, Z: 20}, game.Vec3{X: 14, Z: 20}),
		game.WithScriptedParticipant("h2", 3.2, true,
			game.Vec3{X: 36, Z: 20}, game.Vec3{X: 22, Z: 20}, game.Vec3{X: 36, Z: 6}),
		game.WithPursuer(game.Vec3{X: 20, Z: 4}, game.PursuerConfig{NavMode: navMode}),
		game.WithCaptureSink(func(ev game.CaptureEvent) {
			hub.Broadcast(feed.CaptureMessage{
				Type:     feed.TypeCapture,
				TargetID: ev.TargetID,
				X:        ev.Position.X,
				Y:        ev.Position.Y,
				Z:        ev.Position.Z,
			})
		}),
	)

	hub.SetHello(feed.HelloMessage{Type: feed.TypeHello, TickRate: sim.TickRate()})

	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		hub.Handle(w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	go runLoop(sim, hub, poseHz)

	log.Printf("watch-server listening on %s (seed=%d)", addr, seed)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

// intermissionSeconds is how long a finished round lingers before the next
// one starts.
const intermissionSeconds = 3

// runLoop drives the simulation on its own goroutine at the fixed tick rate
// and samples the pursuer pose for spectators at poseHz. The sim itself is
// only ever touched from this goroutine.
func runLoop(sim *game.Sim, hub *feed.Hub, poseHz int) {
	tickRate := sim.TickRate()
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	poseEvery := tickRate / poseHz
	if poseEvery < 1 {
		poseEvery = 1
	}

	restart := roundRestart{intermissionTicks: intermissionSeconds * tickRate}

	for range ticker.C {
		sim.Step()
		if restart.tick(allCaught(sim)) {
			sim.Reset()
			hub.Broadcast(feed.ResetMessage{Type: feed.TypeReset})
		}
		if sim.CurrentTick()%poseEvery == 0 {
			pos, facing := sim.PursuerPose()
			hub.Broadcast(feed.PoseMessage{
				Type:   feed.TypePose,
				Tick:   sim.CurrentTick(),
				X:      pos.X,
				Y:      pos.Y,
				Z:      pos.Z,
				Facing: facing,
				State:  sim.Pursuer.State.String(),
			})
		}
	}
}

// allCaught reports whether every participant has been caught, ending the
// round.
func allCaught(sim *game.Sim) bool {
	for _, p := range sim.Roster.Participants() {
		if p.Alive {
			return false
		}
	}
	return true
}

// roundRestart counts down the post-round intermission. tick reports true on
// the tick the next round should start.
type roundRestart struct {
	intermissionTicks int
	countdown         int
}

func (r *roundRestart) tick(roundOver bool) bool {
	if !roundOver {
		r.countdown = 0
		return false
	}
	r.countdown++
	if r.countdown >= r.intermissionTicks {
		r.countdown = 0
		return true
	}
	return false
}
