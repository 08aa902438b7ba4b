package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"elevbank/src/api"
	"elevbank/src/config"
	"elevbank/src/dispatcher"
	"elevbank/src/elev"
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding the bank layout and timing")
	envPath := flag.String("env", ".env", "dotenv file with PORT, LOG_LEVEL and NODE_ENV")
	port := flag.Int("port", 0, "HTTP port, overrides PORT")
	logPath := flag.String("log", "", "Also write logs to this file")
	flag.Parse()

	if err := run(*configPath, *envPath, *port, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, envPath string, port int, logPath string) error {
	env, err := config.LoadEnv(envPath)
	if err != nil {
		return err
	}
	if port != 0 {
		env.Port = port
	}

	logFile, err := elev.InitLogger(env.LogLevel, logPath)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.Info("Starting elevator bank", "mode", env.Mode, "port", env.Port,
		"cars", cfg.NumCars, "maxFloor", cfg.MaxFloor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bank := dispatcher.New(cfg)
	server := api.NewServer(bank, env.Port)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bank.Run(ctx) })
	g.Go(func() error { return server.ListenAndServe(ctx) })
	if err := g.Wait(); err != nil {
		slog.Error("Shutting down", "err", err)
		return err
	}
	slog.Info("Stopped")
	return nil
}
