package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kagent-dev/gemini-mcp-server/internal/mcpserver"
	"github.com/kagent-dev/gemini-mcp-server/internal/metrics"
	"github.com/kagent-dev/gemini-mcp-server/internal/version"
	"github.com/kagent-dev/gemini-mcp-server/pkg/config"
	"github.com/kagent-dev/gemini-mcp-server/pkg/gemini"
	"github.com/kagent-dev/gemini-mcp-server/pkg/logger"
)

type options struct {
	configPath  string
	logLevel    string
	stdio       bool
	port        int
	metricsPort int
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "gemini-mcp-server",
	Short: "MCP server exposing Google Gemini as the query_gemini tool",
	Run:   run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
	},
}

func init() {
	addFlags(rootCmd.Flags(), &opts)
	rootCmd.AddCommand(versionCmd)
}

func addFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.configPath, "config", "", "Path to config.json (default: next to the executable)")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.BoolVar(&o.stdio, "stdio", true, "Serve MCP over stdin/stdout; when false an SSE server is started on --port")
	fs.IntVarP(&o.port, "port", "p", 8084, "Port for the SSE server")
	fs.IntVar(&o.metricsPort, "metrics-port", 0, "Port for the Prometheus /metrics endpoint (0 disables it)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	logger.Init(opts.logLevel)
	defer logger.Sync()

	log := logger.Get()
	info := version.Get()
	log.Info("Starting "+mcpserver.Name, "version", info.Version, "git_commit", info.GitCommit, "build_date", info.BuildDate)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure to create %s from %s\n", config.FileName, config.ExampleFileName)
		logger.Sync()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := gemini.NewClient(ctx, gemini.ClientConfig{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		log.Error(err, "Failed to create Gemini client")
		logger.Sync()
		os.Exit(1)
	}

	recorder := metrics.NewRecorder()
	mcp := mcpserver.New(client, recorder)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	metricsErr := make(chan error, 1)
	var metricsServer *http.Server
	if opts.metricsPort > 0 {
		metricsServer = newMetricsServer(opts.metricsPort, recorder)
		go func() {
			log.Info("Serving metrics", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				metricsErr <- fmt.Errorf("metrics server failed: %w", err)
			}
		}()
	}

	var sseServer *server.SSEServer
	if !opts.stdio {
		sseServer = server.NewSSEServer(mcp)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- serve(ctx, mcp, sseServer)
	}()

	exitCode := 0
	select {
	case sig := <-signalChan:
		log.Info("Received termination signal, shutting down server...", "signal", sig.String())
	case err := <-metricsErr:
		log.Error(err, "Server error")
		exitCode = 1
	case err := <-serveErr:
		if err != nil {
			log.Error(err, "Server error")
			exitCode = 1
		} else {
			log.Info("MCP channel closed")
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdown(shutdownCtx, sseServer, metricsServer); err != nil {
		log.Error(err, "Failed to shutdown server gracefully")
		exitCode = 1
	}

	log.Info("Server shutdown complete")
	if exitCode != 0 {
		logger.Sync()
		os.Exit(exitCode)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	logger.Get().Info("Loading configuration", "path", path)
	return config.Load(path)
}

// serve blocks until the MCP channel closes. A nil sseServer selects stdio.
func serve(ctx context.Context, mcp *server.MCPServer, sseServer *server.SSEServer) error {
	if sseServer == nil {
		if err := runStdioServer(ctx, mcp); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server failed: %w", err)
		}
		return nil
	}

	addr := fmt.Sprintf(":%d", opts.port)
	logger.Get().Info("Gemini MCP Server running on SSE", "addr", addr)
	if err := sseServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("SSE server failed: %w", err)
	}
	return nil
}

func runStdioServer(ctx context.Context, mcp *server.MCPServer) error {
	stdioServer := server.NewStdioServer(mcp)
	stdioServer.SetErrorLogger(logger.StdLog())
	logger.Get().Info("Gemini MCP Server running on stdio")
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func newMetricsServer(port int, recorder *metrics.Recorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// shutdown stops whichever listeners were started. Nil servers are skipped.
func shutdown(ctx context.Context, sseServer *server.SSEServer, metricsServer *http.Server) error {
	var result *multierror.Error
	if sseServer != nil {
		if err := sseServer.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("SSE server: %w", err))
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("metrics server: %w", err))
		}
	}
	return result.ErrorOrNil()
}
