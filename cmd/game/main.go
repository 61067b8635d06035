package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/kverne/manhunt/internal/game"
)

func main() {
	ebiten.SetWindowTitle("Manhunt")
	ebiten.SetWindowSize(1168, 720)
	if err := ebiten.RunGame(game.New()); err != nil {
		log.Fatal(err)
	}
}
