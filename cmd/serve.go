package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeu5/crm-rl/server"
)

var servePort int

// ServeCommand starts the read-only status server and blocks until
// interrupted, the same ctx-cancel-on-signal shape the teacher used to
// stop its InterceptNetwork (cbft/network.go Start/ctx.Done).
func ServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only experiment status server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			s := server.New(ctx, servePort)
			s.Start()
			fmt.Printf("serving experiment status on :%d\n", servePort)

			<-sigCh
			cancel()
			return nil
		},
	}
	cmd.Flags().IntVar(&servePort, "port", 8080, "Port to serve status on")
	return cmd
}
