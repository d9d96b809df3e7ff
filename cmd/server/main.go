// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/tmatias/uno/internal/auth"
	"github.com/tmatias/uno/internal/handlers"
	"github.com/tmatias/uno/internal/middleware"
)

func main() {
	cmd := &cli.Command{
		Name:  "uno-server",
		Usage: "real-time multiplayer card-game server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (overrides PORT)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := logrus.New()
	if cmd.Bool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := auth.Init(); err != nil {
		return fmt.Errorf("auth init: %w", err)
	}

	rs := handlers.NewRoomServer(logger)

	mux := http.NewServeMux()
	mux.Handle("/room/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(rs),
	)))
	mux.Handle("/room/list", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListRoomsHandler(rs),
	)))
	mux.Handle("/room/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, rs),
	)))

	addr := cmd.String("addr")
	if addr == "" {
		addr = ":8080"
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}
	logger.Infof("Running on %s", addr)
	return http.ListenAndServe(addr, mux)
}
