package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pointage/internal/confirm"
	"pointage/web"
)

var (
	servePort   int
	serveHost   string
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pointage JSON API",
	Long: `Start an HTTP server exposing statistics, record editing, imports, worker search
and exports as a JSON API.

Imports and range deletes require the passphrase from gate.passphrase. The server has no
authentication and is meant for a trusted local network.`,
	Example: `
  # Start on the port from config (server.port, default 8080)
  pointage serve

  # Listen on localhost only, with an explicit database
  pointage serve --host 127.0.0.1 --port 9090 --db ./pointage.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(serveDBPath)
		if err != nil {
			return err
		}
		defer app.Close()

		port := servePort
		if port == 0 {
			port = app.cfg.Server.Port
		}
		addr := listenAddress(serveHost, port)

		handler := web.NewServer(app.service, confirm.NewGate(app.cfg.Gate.Passphrase), app.logger, web.Options{
			SkipFirstRow: app.cfg.Import.SkipFirstRow,
		})
		server := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		app.logger.Info().Str("addr", addr).Msg("server started")
		fmt.Printf("Listening on http://%s\n", displayAddress(serveHost, port))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			app.logger.Info().Msg("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default from config server.port)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Interface to listen on (default: all interfaces)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to SQLite database (default from config storage.db_path)")
}

func listenAddress(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func displayAddress(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return listenAddress(host, port)
}
