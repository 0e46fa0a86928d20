package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ijalalfrz/flight-price-crawler/cmd/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	code := commands.ExecuteContext(ctx)
	stop()
	os.Exit(code)
}
