package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/cbodonnell/goban/client/game"
	"github.com/cbodonnell/goban/pkg/api"
	"github.com/cbodonnell/goban/pkg/game/constants"
	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/network"
	"github.com/cbodonnell/goban/pkg/queue"
	"github.com/cbodonnell/goban/pkg/repositories"
	"github.com/cbodonnell/goban/pkg/repositories/models"
	"github.com/cbodonnell/goban/pkg/rollback"
	"github.com/cbodonnell/goban/pkg/session"
	"github.com/cbodonnell/goban/pkg/state"
	"github.com/cbodonnell/goban/pkg/version"
	"github.com/cbodonnell/goban/pkg/workers"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	localPort := flag.Int("local-port", 7000, "UDP port to listen on")
	players := flag.String("players", "localhost,127.0.0.1:7001", "Comma separated players in handle order. localhost is the local player")
	spectators := flag.String("spectators", "", "Comma separated spectator addresses")
	frameDelay := flag.Int("frame-delay", constants.DefaultFrameDelay, "Local input delay in frames")
	sparseSaving := flag.Bool("sparse-saving", true, "Only save confirmed frames")
	enforceTurns := flag.Bool("enforce-turns", false, "Ignore moves from the player who is not on turn")
	apiPort := flag.Int("api-port", 0, "Port for the status API. 0 disables it")
	allowOrigin := flag.String("allow-origin", "*", "Allowed CORS origin for the status API")
	debug := flag.Bool("debug", false, "Draw debug information")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting client version %s", version.Get())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sessionPlayers, localHandle, err := parsePlayers(*players)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse players: %v", err))
	}
	spectatorAddrs, err := parseAddrs(*spectators)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse spectators: %v", err))
	}

	socket, err := network.ListenUDP(network.NewUDPSocketOptions{
		Port:         *localPort,
		MessageQueue: queue.NewInMemoryQueue(4096),
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to listen on UDP port %d: %v", *localPort, err))
	}
	go socket.Start(ctx)

	matchID := uuid.NewString()
	gameSession := session.NewSession(session.NewSessionOptions{
		LocalHandle:  localHandle,
		EnforceTurns: *enforceTurns,
	})

	p2p, err := rollback.NewP2PSession(rollback.NewP2PSessionOptions{
		Game:         gameSession,
		Transport:    socket,
		Players:      sessionPlayers,
		Spectators:   spectatorAddrs,
		FrameDelay:   *frameDelay,
		SparseSaving: *sparseSaving,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create session: %v", err))
	}

	stateManager := state.NewInMemoryStateManager()

	var repository repositories.Repository
	var desyncChan chan *models.DesyncReport
	if databaseURL := os.Getenv(repositories.DatabaseURLEnv); databaseURL != "" {
		repository, err = repositories.NewRepository(ctx, databaseURL)
		if err != nil {
			panic(fmt.Sprintf("Failed to create repository: %v", err))
		}
		defer repository.Close(context.Background())

		match := &models.Match{
			ID:          matchID,
			LocalHandle: localHandle,
			NumPlayers:  len(sessionPlayers),
			Players:     *players,
			StartedAt:   time.Now(),
		}
		if err := repository.CreateMatch(ctx, match); err != nil {
			panic(fmt.Sprintf("Failed to create match: %v", err))
		}

		desyncChan = make(chan *models.DesyncReport, 16)
		desyncReportWorker := workers.NewDesyncReportWorker(workers.NewDesyncReportWorkerOptions{
			Repository:   repository,
			ReportChan:   desyncChan,
			StateManager: stateManager,
			MatchID:      matchID,
		})
		workerDone := make(chan struct{})
		go func() {
			desyncReportWorker.Start(ctx)
			close(workerDone)
		}()
		defer func() {
			close(desyncChan)
			<-workerDone
		}()
	}

	if *apiPort != 0 {
		apiServer := api.NewAPIServer(api.NewAPIServerOptions{
			Port:         *apiPort,
			AllowOrigin:  *allowOrigin,
			StateManager: stateManager,
			Repository:   repository,
		})
		go apiServer.Start()
		defer apiServer.Stop(context.Background())
	}

	manager, err := session.NewManager(session.NewManagerOptions{
		ID:           matchID,
		Session:      gameSession,
		Driver:       p2p,
		StateManager: stateManager,
		DesyncChan:   desyncChan,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create session manager: %v", err))
	}

	g, err := game.NewGame(ctx, game.NewGameOptions{
		Debug:   *debug,
		Manager: manager,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create game: %v", err))
	}

	log.Info("Starting match %s as player %d", matchID, localHandle)

	ebiten.SetTPS(constants.FPS)
	ebiten.SetWindowSize(constants.ScreenWidth*2, constants.ScreenHeight*2)
	ebiten.SetWindowTitle("Go")
	if err := ebiten.RunGame(g); err != nil {
		log.Error("Failed to run game: %v", err)
	}
}

// parsePlayers returns the players in handle order and the handle of the local player.
func parsePlayers(s string) ([]rollback.Player, int, error) {
	var players []rollback.Player
	localHandle := -1
	for i, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "localhost" {
			if localHandle >= 0 {
				return nil, 0, fmt.Errorf("more than one local player")
			}
			localHandle = i
			players = append(players, rollback.LocalPlayer())
			continue
		}
		addr, err := network.NormalizeAddr(p)
		if err != nil {
			return nil, 0, err
		}
		players = append(players, rollback.RemotePlayer(addr))
	}
	if localHandle < 0 {
		return nil, 0, fmt.Errorf("no local player")
	}
	if len(players) != constants.NumPlayers {
		return nil, 0, fmt.Errorf("expected %d players, got %d", constants.NumPlayers, len(players))
	}
	return players, localHandle, nil
}

func parseAddrs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		addr, err := network.NormalizeAddr(strings.TrimSpace(a))
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
