package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/config"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/server"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/ticketmaster"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	port := flag.Int("port", 0, "HTTP transport port (forces HTTP mode)")
	stdioMode := flag.Bool("stdio", false, "serve over stdio (forces stdio mode)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error running Ticketmaster server: %v\n", err)
		os.Exit(1)
	}

	// --stdio forces stdio, --port forces HTTP; with neither flag, a PORT
	// in the environment selects HTTP, otherwise stdio.
	useHTTP := *port > 0 || (os.Getenv("PORT") != "" && !*stdioMode)
	if *port > 0 {
		cfg.Port = *port
	}

	if useHTTP {
		runHTTP(cfg)
	} else {
		runStdio(cfg)
	}
}

// newLogger builds the logger for the selected transport mode. Stdio mode
// must keep stdout clean for the protocol stream.
func newLogger(cfg config.Config, stdio bool) *logging.Logger {
	var logCfg logging.Config
	switch {
	case stdio:
		logCfg = logging.StdioConfig()
	case cfg.IsProduction():
		logCfg = logging.ProductionConfig()
	default:
		logCfg = logging.DevelopmentConfig()
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error creating logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// gatewayFactory returns the single gateway construction path shared by
// both transport bindings.
func gatewayFactory(cfg config.Config, logger *logging.Logger) server.GatewayFactory {
	client, err := ticketmaster.NewClient(cfg.APIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error running Ticketmaster server: %v\n", err)
		os.Exit(1)
	}

	return func() *server.Gateway {
		return server.NewGateway(client, logger)
	}
}

func runStdio(cfg config.Config) {
	logger := newLogger(cfg, true)
	defer func() {
		_ = logger.Sync()
	}()

	gateway := gatewayFactory(cfg, logger)()
	transport := server.NewStdioTransport(logger)
	if err := gateway.Connect(transport); err != nil {
		logger.Errorf("Fatal error connecting transport: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := gateway.Start(ctx); err != nil {
		logger.Errorf("Fatal error starting server: %v", err)
		os.Exit(1)
	}
	logger.Info("Ticketmaster MCP server running on stdio")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case <-shutdown:
	case <-transport.Done():
	}

	cancel()
	if err := gateway.Close(); err != nil {
		logger.Errorf("Error closing gateway: %v", err)
	}
}

func runHTTP(cfg config.Config) {
	logger := newLogger(cfg, false)
	defer func() {
		_ = logger.Sync()
	}()

	httpTransport := server.NewHTTPTransport(cfg.ListenAddr(), gatewayFactory(cfg, logger), logger)

	go func() {
		if err := httpTransport.Start(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Fatal error running HTTP server: %v", err)
			os.Exit(1)
		}
	}()

	logServerStart(cfg, logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	logger.Info("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpTransport.Shutdown(ctx); err != nil {
		logger.Errorf("Error shutting down HTTP server: %v", err)
	}
}

// logServerStart announces the listen address and, outside production, a
// ready-to-paste client configuration snippet.
func logServerStart(cfg config.Config, logger *logging.Logger) {
	if cfg.IsProduction() {
		logger.Infof("Ticketmaster MCP Server listening on port %d", cfg.Port)
		return
	}

	logger.Infof("Ticketmaster MCP Server listening on http://localhost:%d", cfg.Port)
	logger.Infof("Put this in your client config:\n%s", fmt.Sprintf(`{
  "mcpServers": {
    "ticketmaster": {
      "url": "http://localhost:%d/mcp"
    }
  }
}`, cfg.Port))
}
