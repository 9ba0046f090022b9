package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/gw2dex/gw2dex/internal/api"
	"github.com/gw2dex/gw2dex/internal/condense"
	"github.com/gw2dex/gw2dex/internal/config"
	"github.com/gw2dex/gw2dex/internal/search"
	"github.com/gw2dex/gw2dex/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over local HTTP and MCP stdio",
	Long: `Serve the catalog over local HTTP and MCP stdio.

The HTTP API listens on 127.0.0.1 and exposes /search, /items/{id},
/runs, /healthz and /metrics. In parallel the same catalog is exposed
as MCP tools over stdio, so the process can be registered directly as
an MCP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		lang, _ := cmd.Flags().GetString("lang")
		return runServer(cmd.Context(), lang, debug)
	},
}

func runServer(baseCtx context.Context, lang string, debug bool) error {
	setupLogging(debug)
	fmt.Fprintf(os.Stderr, "gw2dex version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if lang == "" {
		lang = cfg.Storage.Langs[0]
	}

	ctx, stop := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}()

	items, err := condense.ReadFile(cfg.Storage.CondensedPath(lang))
	if err != nil {
		return fmt.Errorf("no %s catalog available (run `gw2dex update` first): %w", lang, err)
	}
	names := make(map[int]string, len(items))
	for id, it := range items {
		names[id] = it.Name
	}

	deps := api.AppDeps{
		Items: items,
		Index: search.New(names),
		Store: store,
	}
	handler := api.NewAppHandler(deps)
	slog.Info("catalog loaded", "lang", lang, "items", len(items))

	// MCP server on stdio, next to the HTTP listener.
	mcpSrv := api.NewMCPServer(api.NewMCPDeps(deps))
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().Bool("debug", false, "enable debug logging")
	serveCmd.Flags().String("lang", "", "catalog locale to serve (default: first configured)")
}
