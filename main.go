package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/kanban-task-service/config"
	"github.com/example/kanban-task-service/modules/api"
	"github.com/example/kanban-task-service/modules/notification"
	"github.com/example/kanban-task-service/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "kanban-task-service",
		Usage: "Task board service with REST, GraphQL and live change notifications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Optional .env file loaded before the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address (overrides HTTP_ADDR)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log every SQL statement",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("kanban-task-service: %v", err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		cfg.HTTPAddr = cmd.String("addr")
	}
	if cmd.Bool("debug") {
		cfg.DBDebug = true
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	logger := app.Logger()

	// The notification module owns the hub the task core publishes to and
	// the WebSocket endpoint subscribes on.
	notifications := notification.NewModule(cfg.SubscriberBuffer, cfg.RelayBuffer, logger)

	app.Register(notifications)
	app.Register(task.NewModule(cfg, notifications.Hub(), logger))
	app.Register(api.NewModule(cfg, notifications.Hub(), logger))

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	log.Printf("Listening on %s (store: %s, cache: %t, auth: %t)",
		cfg.HTTPAddr, cfg.DBDriver, cfg.RedisAddr != "", !cfg.AuthDisabled)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	if exitCode != 0 {
		return cli.Exit("shutdown did not complete cleanly", exitCode)
	}
	return nil
}
