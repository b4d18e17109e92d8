// Command mazerooms starts the shared maze room server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the room websocket, the REST status API, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, the profile directory and default profile, debug
// logging, and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
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
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mazerooms/api"
	"github.com/wricardo/mazerooms/game/config"
	"github.com/wricardo/mazerooms/game/room"
	"github.com/wricardo/mazerooms/transport/mcp"
	"github.com/wricardo/mazerooms/transport/websocket"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Rooms Server"
)

// statsInterval is how often occupancy is logged while rooms are active.
const statsInterval = time.Minute

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	cmd := newRootCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newRootCommand defines flags, their environment sources and the two modes.
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "mazerooms",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing maze profiles",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "profile",
				Value:   config.DefaultProfileName,
				Usage:   "Maze profile used for new rooms",
				Sources: cli.EnvVars("MAZE_PROFILE"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runHTTPServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with websocket rooms, REST status API, and MCP endpoint (default)",
				Action:  runHTTPServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server, starting an internal HTTP server if needed",
				Action:  runStdioMCPWithInternalServer,
			},
		},
	}
}

// newLogger builds a development logger in debug mode, production otherwise.
func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// services holds the long-lived components shared by both modes.
type services struct {
	profiles  *config.Manager
	profile   *config.Profile
	directory *room.Directory
}

// initializeServices loads profiles and builds the room directory for the
// selected profile.
func initializeServices(configDir, profileName string, logger *zap.SugaredLogger) (*services, error) {
	profiles, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile manager: %w", err)
	}

	profile := profiles.GetDefault()
	if profileName != "" {
		if err := profiles.SetDefault(profileName); err != nil {
			if !errors.Is(err, config.ErrProfileNotFound) {
				return nil, fmt.Errorf("failed to load profile %q: %w", profileName, err)
			}
			logger.Warnw("profile not found, using default", "profile", profileName, "default", profile.Name)
		} else {
			profile = profiles.GetDefault()
		}
	}

	gen, err := profile.NewGenerator(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create maze generator: %w", err)
	}

	logger.Infow("using maze profile",
		"profile", profile.Name,
		"rows", profile.Rows,
		"cols", profile.Cols,
		"max_players", profile.MaxPlayers,
		"generator", profile.Generator,
	)

	return &services{
		profiles:  profiles,
		profile:   profile,
		directory: room.NewDirectory(gen, profile.MaxPlayers, logger),
	}, nil
}

// setup builds the logger and services from the command's flags.
func setup(cmd *cli.Command) (*zap.SugaredLogger, *services, error) {
	logger, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return nil, nil, err
	}

	logger.Infow("starting", "app", AppName, "version", Version, "mode", cmd.Name)

	svc, err := initializeServices(cmd.String("config-dir"), cmd.String("profile"), logger)
	if err != nil {
		return nil, nil, err
	}
	return logger, svc, nil
}

// runHTTPServer starts the HTTP server with the websocket hub, REST API, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	logger, svc, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Setup graceful shutdown context
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hub := websocket.NewHub(svc.directory, logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	apiServer := api.NewServer(svc.directory, svc.profiles, hub, logger)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))

	// Create MCP client for /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Infow("HTTP server listening",
			"addr", addr,
			"websocket", fmt.Sprintf("ws://%s/ws", addr),
			"api", fmt.Sprintf("http://%s/api", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr),
		)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
			cancel()
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter, logger)
		}()
	}

	go statsRoutine(ctx, svc.directory, hub, logger, statsInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	// Close websocket clients before the HTTP server stops accepting.
	stopHub()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")

	select {
	case err := <-serverErr:
		return err
	default:
		return nil
	}
}

// mcpHandler serves single MCP JSON-RPC messages over HTTP POST.
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
	}
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done.
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler, logger *zap.SugaredLogger) {
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Infow("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Errorw("failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warnw("failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Infow("ngrok tunnel established",
		"url", ngrokURL,
		"connect", ngrokURL+"/api/connect",
		"mcp", ngrokURL+"/mcp",
	)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logger.Errorw("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// statsRoutine periodically logs room occupancy while any room is active.
func statsRoutine(ctx context.Context, directory *room.Directory, hub *websocket.Hub, logger *zap.SugaredLogger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := directory.Stats()
			if stats.ActiveRooms == 0 {
				continue
			}
			logger.Infow("occupancy",
				"rooms", stats.ActiveRooms,
				"players", stats.TotalPlayers,
				"connections", hub.ClientCount(),
			)
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:<port>; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cmd *cli.Command) error {
	logger, svc, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	externalURL := fmt.Sprintf("http://localhost:%d", cmd.Int("port"))
	baseURL := externalURL
	logger.Infow("checking for external API server", "url", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logger.Infow("external API server found, using it for MCP", "url", externalURL)
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		logger.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		logger.Infow("starting internal HTTP server for MCP stdio", "addr", internalAddr)

		hubCtx, stopHub := context.WithCancel(ctx)
		defer stopHub()
		hub := websocket.NewHub(svc.directory, logger)
		go hub.Run(hubCtx)

		httpServer := &http.Server{
			Handler: api.NewServer(svc.directory, svc.profiles, hub, logger),
		}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Errorw("internal HTTP server error", "error", err)
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Infow("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
