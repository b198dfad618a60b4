package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dashdoc/webmanager/internal/notes"
	"github.com/dashdoc/webmanager/internal/web"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	Long: `Start the web dashboard: page language grouping, the page list with
multi-select grouping, and post-sales voice notes.

Outside env "dev" the dashboard requires the configured username and password.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default: server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	log := d.logs.Get("web")

	if port != "" {
		d.cfg.Server.Port = port
	} else if envPort := os.Getenv("PORT"); envPort != "" {
		d.cfg.Server.Port = envPort
	}

	deps := web.Deps{
		Config:  d.cfg,
		Content: d.pipeline,
		Links:   d.storyblok,
		Log:     log,
	}
	if d.hubspot != nil {
		deps.CRM = d.hubspot
	}

	proc, err := d.processor(cmd.Context())
	if err != nil {
		log.Warn("notes tool disabled", "error", err)
		deps.Schema = notes.SalesSchema(nil)
	} else {
		deps.Notes = proc
	}

	server, err := web.New(deps)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = server.Shutdown()
	}()

	if err := server.Listen(":" + d.cfg.Server.Port); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
