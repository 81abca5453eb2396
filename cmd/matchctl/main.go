package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	matchctl "github.com/louisbranch/matchpoint/internal/cmd/matchctl"
)

func main() {
	cfg, err := matchctl.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[MATCHCTL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := matchctl.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}
