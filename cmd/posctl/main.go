// Command posctl is the counter terminal: it shows the menu, places orders,
// and works the kitchen queue against the configured order store.
//
//	posctl menu
//	posctl place Samosa=3 Chai=2
//	posctl queue
//	posctl orders
//	posctl serve AB12CD
//	posctl cancel AB12CD
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dhiya-foods/orderboard/internal/config"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: posctl <menu | place Item=Qty... | queue | orders | serve ID | cancel ID>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "posctl: invalid configuration: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx, cfg, flag.Args(), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
