// rpotool converts RPO/RPOZ mesh assets to OBJ and fetches them from the DLC catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/Faultbox/rpotool/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
