package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/planwright/planwright/internal/application"
	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/infrastructure/httpapi"
	"github.com/planwright/planwright/internal/infrastructure/ipc"
	"github.com/planwright/planwright/internal/infrastructure/watch"
	"github.com/planwright/planwright/internal/infrastructure/wiring"
)

// fanoutNotifier pushes to the pipe client when one is connected and
// always mirrors to the HTTP surface for polling and websocket clients.
type fanoutNotifier struct {
	pipe *ipc.Server
	http *httpapi.Server
}

func (n *fanoutNotifier) Push(env *protocol.Envelope) error {
	var pipeErr error
	if n.pipe != nil {
		pipeErr = n.pipe.Push(env)
	}
	if n.http != nil {
		if err := n.http.Push(env); err != nil {
			return err
		}
	}
	return pipeErr
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the companion servers (pipe transport plus HTTP fallback)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()

		notifier := &fanoutNotifier{}
		services, err := wiring.BuildAppServices(cwd, notifier)
		if err != nil {
			return err
		}
		cfg := services.Workspace.Config

		pipeServer := ipc.NewServer(cfg.SocketPath, services.Router, cfg.ExchangeTimeout)
		httpServer := httpapi.NewServer(cfg.HTTPAddr, services.Router, Version)
		notifier.pipe = pipeServer
		notifier.http = httpServer

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Out-of-band queue edits (desktop dialogs, a second CLI) still
		// surface to connected clients.
		queuePath, err := services.Workspace.Repo.QueuePath()
		if err == nil {
			queueSync := application.NewQueueSync(services.Reviews, notifier, nil)
			if err := queueSync.Prime(); err != nil {
				log.Printf("queue sync prime failed: %v", err)
			}
			watcher := watch.NewQueueWatcher(queuePath, 0, func() {
				log.Printf("review queue changed on disk")
				if err := queueSync.Sync(); err != nil {
					log.Printf("queue sync failed: %v", err)
				}
			})
			go func() {
				if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
					log.Printf("queue watcher stopped: %v", err)
				}
			}()
		}

		errCh := make(chan error, 2)
		go func() { errCh <- pipeServer.Serve(ctx) }()
		go func() { errCh <- httpServer.Start() }()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil && ctx.Err() == nil {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pipeServer.Close()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
