// Command seabattle starts the Sea Battle match server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the websocket
//     game endpoint, a read-only REST view, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs the MCP observer over stdio alongside the game
//     server
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
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"seabattle/api"
	"seabattle/game/config"
	"seabattle/game/service"
	"seabattle/game/session"
	transportmcp "seabattle/transport/mcp"
	transportws "seabattle/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Sea Battle Server"
)

// Configuration flags control how the server starts.
var (
	port         = flag.Int("port", 18080, "HTTP server port")
	host         = flag.String("host", "0.0.0.0", "HTTP server host")
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
		fmt.Fprintf(os.Stderr, "  server           Run the game server (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run the MCP observer over stdio\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
}

// main parses flags, wires the services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found).
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	cfg := config.Load()
	dispatcher, sessions, err := initializeServices(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	switch mode {
	case "server", "http":
		runServer(cfg, dispatcher, sessions, false)
	case "stdio-mcp", "mcp-stdio", "mcp":
		runServer(cfg, dispatcher, sessions, true)
	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// initializeServices wires the session manager, match archive and protocol
// dispatcher, and starts the background expiry sweep.
func initializeServices(cfg config.Config) (*service.Dispatcher, *session.Manager, error) {
	sessions := session.NewManager(cfg.BoardSize)

	var archive *session.FileArchive
	if cfg.ArchiveDir != "" {
		var err error
		archive, err = session.NewFileArchive(cfg.ArchiveDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create match archive: %w", err)
		}
	}

	dispatcher := service.NewDispatcher(sessions, archive)
	go sweepRoutine(dispatcher, cfg)

	return dispatcher, sessions, nil
}

// sweepRoutine periodically removes sessions idle past the expiry
// threshold.
func sweepRoutine(dispatcher *service.Dispatcher, cfg config.Config) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		removed := dispatcher.Sweep(cfg.SessionExpiry)
		if removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// runServer starts the HTTP server with the websocket endpoint, REST view
// and /mcp endpoint. With stdio enabled it additionally serves the MCP
// observer on stdin/stdout.
func runServer(cfg config.Config, dispatcher *service.Dispatcher, sessions *session.Manager, stdio bool) {
	hub := transportws.NewHub(dispatcher)
	go hub.Run()

	apiServer := api.NewServer(sessions, hub.ServeWS)
	mcpServer := transportmcp.NewServer(sessions)

	addr := fmt.Sprintf("%s:%d", *host, *port)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.MCPServer().HandleMessage(r.Context(), body)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("Health: http://%s/health", addr)
		log.Printf("Sessions API: http://%s/api/sessions", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if stdio {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("Serving MCP over stdio")
			if err := mcpserver.ServeStdio(mcpServer.MCPServer()); err != nil {
				log.Printf("MCP stdio server stopped: %v", err)
			}
		}()
	}

	// Check if ngrok should be enabled (from flag or environment).
	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter)
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// runNgrokTunnel provisions a public tunnel to the local server for
// development use.
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	log.Printf("Ngrok tunnel established: %s", tun.URL())

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}
