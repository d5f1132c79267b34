// Command royal-game-of-ur starts the Royal Game of Ur server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, debug logging, version output, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/royal-game-of-ur/api"
	"github.com/wricardo/royal-game-of-ur/config"
	"github.com/wricardo/royal-game-of-ur/game/engine"
	"github.com/wricardo/royal-game-of-ur/game/lobby"
	"github.com/wricardo/royal-game-of-ur/game/presence"
	"github.com/wricardo/royal-game-of-ur/game/service"
	"github.com/wricardo/royal-game-of-ur/game/session"
	"github.com/wricardo/royal-game-of-ur/identity"
	"github.com/wricardo/royal-game-of-ur/transport/mcp"
	"github.com/wricardo/royal-game-of-ur/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Royal Game of Ur Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.String("port", "", "HTTP server port (overrides PORT)")
	host         = flag.String("host", "", "HTTP server host (overrides HOST)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment
	if *host != "" {
		cfg.Host = *host
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *debug {
		cfg.Debug = true
	}
	if *ngrokEnabled {
		cfg.NgrokEnabled = true
	}
	if *ngrokAuth != "" {
		cfg.NgrokAuthtoken = *ngrokAuth
	}
	if *ngrokDomain != "" {
		cfg.NgrokDomain = *ngrokDomain
	}

	setupLogging(cfg.Debug)

	// Determine mode from command
	args := flag.Args()
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	log.Info().Str("mode", mode).Str("version", Version).Msg("starting " + AppName)

	gameService, manager, err := initializeServices(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(gameService, cfg)

	case "server", "http":
		runHTTPServer(gameService, manager, cfg)

	default:
		log.Fatal().Str("mode", mode).Msg("unknown mode, use 'server' (default) or 'stdio-mcp'")
	}
}

// setupLogging configures the global zerolog logger.
func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// initializeServices wires persistence, matchmaking, presence, and the
// game service, and restores any persisted snapshot.
func initializeServices(cfg *config.Config) (service.GameService, *session.Manager, error) {
	var store session.Store
	if cfg.SnapshotPath != "" {
		fileStore, err := session.NewFileStore(cfg.SnapshotPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create snapshot store: %w", err)
		}
		store = fileStore
	} else {
		log.Warn().Msg("persistence disabled, games will not survive a restart")
	}

	ledger := lobby.NewLedger()
	manager := session.NewManager(store, ledger, engine.CoinDice{})

	challenges, err := manager.LoadSnapshot()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load snapshot, starting empty")
	} else {
		ledger.Restore(challenges)
	}

	directory := presence.NewDirectory()
	gameService := service.NewGameService(manager, ledger, directory, cfg.FinishedGrace)

	return gameService, manager, nil
}

// snapshotRoutine periodically writes the snapshot document so that a
// crash loses at most one interval of play.
func snapshotRoutine(ctx context.Context, manager *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			manager.Persist()
		case <-ctx.Done():
			return
		}
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(gameService service.GameService, manager *session.Manager, cfg *config.Config) {
	// Create WebSocket hub
	hub := websocket.NewHub(gameService, identity.QueryProvider{})
	go hub.Run()

	// Create API server
	apiServer := api.NewServer(gameService, hub)

	addr := cfg.Addr()

	// Create MCP client for /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	// Create main router that combines API and MCP
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	// Always add MCP endpoint for HTTP server
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Periodic snapshots
	if cfg.SnapshotPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshotRoutine(ctx, manager, cfg.SnapshotInterval)
		}()
	}

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?player=<id>&name=<name>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start ngrok tunnel if enabled
	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if cfg.NgrokAuthtoken == "" {
				log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
				return
			}

			log.Info().Msg("starting ngrok tunnel")

			var tunnel ngrokConfig.Tunnel
			if cfg.NgrokDomain != "" {
				tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
				log.Info().Str("domain", cfg.NgrokDomain).Msg("using custom ngrok domain")
			} else {
				tunnel = ngrokConfig.HTTPEndpoint()
			}

			tun, err := ngrok.Listen(ctx,
				tunnel,
				ngrok.WithAuthtoken(cfg.NgrokAuthtoken),
			)
			if err != nil {
				log.Error().Err(err).Msg("failed to start ngrok tunnel")
				return
			}
			defer func() {
				if err := tun.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close ngrok tunnel")
				}
			}()

			log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")

			if err := http.Serve(tun, mainRouter); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("ngrok server error")
			}
			log.Info().Msg("ngrok tunnel closed")
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Final snapshot so nothing played since the last tick is lost
	manager.Persist()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Info().Msg("server stopped")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(gameService service.GameService, cfg *config.Config) {
	var baseURL string

	// First, try to connect to external API server at localhost:8080
	externalURL := "http://localhost:" + cfg.Port
	log.Info().Str("url", externalURL).Msg("checking for external API server")

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
		baseURL = externalURL
	} else {
		// No external server found, start internal one
		log.Info().Msg("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get available port")
		}

		internalAddr := listener.Addr().String()
		log.Info().Str("addr", internalAddr).Msg("starting internal HTTP server for MCP stdio")

		hub := websocket.NewHub(gameService, identity.QueryProvider{})
		go hub.Run()

		apiServer := api.NewServer(gameService, hub)
		httpServer := &http.Server{Handler: apiServer}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()

		// Wait a moment for the server to be ready
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatal().Err(err).Msg("MCP stdio server error")
	}
}
