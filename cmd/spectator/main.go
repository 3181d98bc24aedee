package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/cbodonnell/goban/client/terminal"
	"github.com/cbodonnell/goban/pkg/game/constants"
	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/network"
	"github.com/cbodonnell/goban/pkg/queue"
	"github.com/cbodonnell/goban/pkg/rollback"
	"github.com/cbodonnell/goban/pkg/session"
	"github.com/cbodonnell/goban/pkg/state"
	"github.com/cbodonnell/goban/pkg/version"
)

func main() {
	host := flag.String("host", "127.0.0.1:7000", "Address of the player relaying inputs")
	localPort := flag.Int("local-port", 7100, "UDP port to listen on")
	players := flag.Int("players", constants.NumPlayers, "Number of players in the session")
	apiURL := flag.String("api", "", "Follow the board stream of a status API instead, e.g. ws://localhost:8080/ws")
	logFile := flag.String("log-file", "goban-spectator.log", "File to write logs to")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	out, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		panic(fmt.Sprintf("Failed to open log file: %v", err))
	}
	defer out.Close()

	logger := log.New(out, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting spectator version %s", version.Get())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	boards := make(chan state.BoardView, 1)
	status := make(chan string, 1)
	if *apiURL != "" {
		go watch(ctx, *apiURL, boards, status)
	} else {
		go spectate(ctx, *host, *localPort, *players, boards, status)
	}

	screen, err := terminal.Open()
	if err != nil {
		panic(fmt.Sprintf("Failed to open terminal: %v", err))
	}
	defer screen.Close()

	var board state.BoardView
	var msg string
	if err := screen.Draw([]string{"Waiting for the host"}); err != nil {
		log.Error("Failed to draw: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-screen.Quit():
			return
		case board = <-boards:
		case msg = <-status:
		}
		if board.Rows == nil {
			continue
		}
		if err := screen.Draw(terminal.Lines(board, msg)); err != nil {
			log.Error("Failed to draw: %v", err)
		}
	}
}

// spectate replays the inputs relayed by a player.
func spectate(ctx context.Context, host string, localPort, players int, boards chan<- state.BoardView, status chan<- string) {
	hostAddr, err := network.NormalizeAddr(host)
	if err != nil {
		sendStatus(status, err.Error())
		return
	}

	socket, err := network.ListenUDP(network.NewUDPSocketOptions{
		Port:         localPort,
		MessageQueue: queue.NewInMemoryQueue(4096),
	})
	if err != nil {
		sendStatus(status, fmt.Sprintf("failed to listen: %v", err))
		return
	}
	go socket.Start(ctx)

	gameSession := session.NewSession(session.NewSessionOptions{LocalHandle: -1})
	spectator, err := rollback.NewSpectatorSession(rollback.NewSpectatorSessionOptions{
		Game:       gameSession,
		Transport:  socket,
		Host:       hostAddr,
		NumPlayers: players,
	})
	if err != nil {
		sendStatus(status, fmt.Sprintf("failed to create session: %v", err))
		return
	}

	stateManager := state.NewInMemoryStateManager()
	manager, err := session.NewManager(session.NewManagerOptions{
		Session:      gameSession,
		Driver:       spectator,
		StateManager: stateManager,
		OnEvent: func(e rollback.Event) {
			switch e.Type {
			case rollback.EventNetworkInterrupted:
				sendStatus(status, "connection interrupted")
			case rollback.EventNetworkResumed, rollback.EventSynchronized:
				sendStatus(status, "")
			case rollback.EventDisconnected:
				sendStatus(status, "host disconnected")
			}
		},
	})
	if err != nil {
		sendStatus(status, fmt.Sprintf("failed to create session manager: %v", err))
		return
	}

	updates := stateManager.Updates(ctx)
	go func() {
		var lastFrame int32 = -1
		for range updates {
			snapshot, err := stateManager.Get(ctx)
			if err != nil || snapshot.Frame == lastFrame {
				continue
			}
			lastFrame = snapshot.Frame
			select {
			case boards <- state.NewBoardView(snapshot):
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := manager.Start(ctx); err != nil {
		log.Error("Spectator session failed: %v", err)
		sendStatus(status, "session failed")
	}
}

// watch follows the board stream of a player's status API.
func watch(ctx context.Context, url string, boards chan<- state.BoardView, status chan<- string) {
	client := network.NewWSBoardClient(url, boards)
	if err := client.Connect(ctx); err != nil {
		sendStatus(status, err.Error())
		return
	}
	if err := client.HandleMessages(ctx); err != nil {
		sendStatus(status, "stream closed")
	}
}

func sendStatus(status chan<- string, msg string) {
	select {
	case status <- msg:
	default:
	}
}
