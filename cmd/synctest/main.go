package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/cbodonnell/goban/pkg/game/constants"
	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/cbodonnell/goban/pkg/rollback"
	"github.com/cbodonnell/goban/pkg/session"
	"github.com/cbodonnell/goban/pkg/version"
)

func main() {
	frames := flag.Int("frames", 3600, "Number of frames to simulate")
	checkDistance := flag.Int("check-distance", 7, "Number of frames to roll back and simulate again on every frame")
	seed := flag.Int64("seed", 0, "Random seed. 0 uses the current time")
	clickRate := flag.Int("click-rate", 10, "Each player clicks once every this many frames on average")
	enforceTurns := flag.Bool("enforce-turns", false, "Ignore moves from the player who is not on turn")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting sync test version %s", version.Get())

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	if *clickRate < 1 {
		panic("click-rate must be at least 1")
	}
	rng := rand.New(rand.NewSource(*seed))

	gameSession := session.NewSession(session.NewSessionOptions{LocalHandle: -1, EnforceTurns: *enforceTurns})
	syncTest, err := rollback.NewSyncTestSession(rollback.NewSyncTestSessionOptions{
		Game:          gameSession,
		NumPlayers:    constants.NumPlayers,
		CheckDistance: *checkDistance,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create sync test session: %v", err))
	}

	start := time.Now()
	for frame := 0; frame < *frames; frame++ {
		for handle := 0; handle < constants.NumPlayers; handle++ {
			in := messages.NoMove
			if rng.Intn(*clickRate) == 0 {
				in = messages.EncodeInput(messages.NewPointerState(rng.Intn(constants.ScreenWidth), rng.Intn(constants.ScreenHeight), true))
			}
			if err := syncTest.AddLocalInput(handle, in); err != nil {
				panic(fmt.Sprintf("Failed to add input: %v", err))
			}
		}
		if err := syncTest.AdvanceFrame(); err != nil {
			log.Error("Sync test failed with seed %d: %v", *seed, err)
			os.Exit(1)
		}
	}

	gs := gameSession.State()
	log.Info("Simulated %d frames with seed %d in %s: %d moves applied, checksum %016x", *frames, *seed, time.Since(start), gameSession.MovesApplied(), gs.Checksum())
	fmt.Println(gs.Board.String())
}
