package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"schema-generator/cli"
	"schema-generator/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	addr := flag.String("addr", "", "listen address, overrides server.address")
	flag.Parse()

	cfg, err := config.Find(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addr == "" {
		*addr = cfg.Server.Address
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Serve(ctx, cfg, *addr); err != nil {
		log.Fatalf("http server error: %v", err)
	}
}
