package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/shape-tools-mcp/internal/config"
	"github.com/ironsheep/shape-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("shape-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("shape-tools-mcp - MCP server for regularizing hand-drawn shapes")
			fmt.Println()
			fmt.Println("Usage: shape-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  SHAPES_MCP_LOG_LEVEL=debug             Enable debug logging")
			fmt.Println("  SHAPES_MCP_WORKERS=N                   Polylines processed at once (default: CPU count)")
			fmt.Println("  SHAPES_MCP_RENDER_SIZE=N               Plot canvas side in pixels (default: 512)")
			fmt.Println("  SHAPES_MCP_CLASSIFIER=default|independent  Classification rule chain")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("Shape MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("workers=%d render_size=%d classifier=%s", cfg.Workers, cfg.RenderSize, cfg.Classifier)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
