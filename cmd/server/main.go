package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/computer-agent/backend/api/handlers"
	"github.com/computer-agent/backend/internal/agent"
	"github.com/computer-agent/backend/internal/config"
	"github.com/computer-agent/backend/internal/db"
	"github.com/computer-agent/backend/internal/hub"
	"github.com/computer-agent/backend/internal/repository"
	"github.com/computer-agent/backend/internal/vncproxy"
	"github.com/computer-agent/backend/internal/ws"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Ensure data directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	if cfg.Storage.TranscriptDir != "" {
		if err := os.MkdirAll(cfg.Storage.TranscriptDir, 0755); err != nil {
			log.Fatalf("Failed to create transcript directory: %v", err)
		}
	}

	// Initialize database
	database, err := db.InitDB(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(database)
	messageRepo := repository.NewMessageRepository(database)

	// Pick the agent runner
	var runner agent.Runner
	if cfg.Agent.APIKey != "" && !cfg.Agent.Scripted {
		runner = agent.NewAnthropicRunner(cfg.Agent.APIKey)
	} else {
		log.Println("No API key configured, using the scripted runner")
		runner = agent.NewScriptedRunner()
	}

	// Initialize the session hub
	sessionHub := hub.New(runner, hub.Options{
		MaxTokens:     cfg.Agent.MaxTokens,
		TranscriptDir: cfg.Storage.TranscriptDir,
	})
	defer sessionHub.Close()

	// Initialize the VNC proxy
	proxy := vncproxy.New(vncproxy.Config{
		Host:      cfg.VNC.Host,
		Port:      cfg.VNC.Port,
		ProxyPort: cfg.VNC.ProxyPort,
	})

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionRepo, messageRepo, sessionHub)
	wsHandler := handlers.NewWebSocketHandler(ws.NewHandler(sessionHub))
	desktopHandler := handlers.NewDesktopHandler(proxy)

	// Initialize Gin router
	r := gin.Default()

	// Enable CORS for development
	r.Use(corsMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":          "ok",
			"active_sessions": sessionHub.ActiveSessions(),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		sessionHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
		desktopHandler.RegisterRoutes(api)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		sessionHub.Close()
		db.CloseDB()
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware returns a CORS middleware for development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
