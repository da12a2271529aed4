package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ganot/taskdesk/internal/config"
	"github.com/ganot/taskdesk/internal/contact"
	"github.com/ganot/taskdesk/internal/desktop"
	"github.com/ganot/taskdesk/internal/domain/activity"
	"github.com/ganot/taskdesk/internal/domain/client"
	"github.com/ganot/taskdesk/internal/domain/project"
	"github.com/ganot/taskdesk/internal/domain/quicktask"
	"github.com/ganot/taskdesk/internal/mcp"
	"github.com/ganot/taskdesk/internal/sqlite"
	"github.com/ganot/taskdesk/internal/view"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if err := ensureDBDir(cfg.Storage.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}

	db, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Validate already checked both.
	loc, _ := cfg.Export.Location()
	lang, _ := cfg.Clients.Tag()

	kv := sqlite.NewKVStore(db, cfg.Storage.QuotaBytes)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	var projector *view.Projector
	projects := project.NewStore(kv, project.Options{
		StorageKey:       cfg.Projects.Key,
		MaxDocumentBytes: cfg.Projects.MaxDocumentBytes,
		SaveDebounce:     cfg.Projects.SaveDebounce,
		Currencies:       cfg.Projects.Currencies,
		Location:         loc,
		Activity:         activitySvc,
		OnTruncate: func(dropped []string) {
			projector.Reset()
		},
	}, logger)
	quickTasks := quicktask.NewStore(kv, quicktask.Options{
		StorageKey:    cfg.QuickTasks.Key,
		MaxItems:      cfg.QuickTasks.MaxItems,
		KeepCompleted: cfg.QuickTasks.KeepCompleted,
		SaveDebounce:  cfg.QuickTasks.SaveDebounce,
		Activity:      activitySvc,
	}, logger)
	clients := client.NewStore(kv, client.Options{
		StorageKey:   cfg.Clients.Key,
		SaveDebounce: cfg.Clients.SaveDebounce,
		Language:     lang,
		Activity:     activitySvc,
	}, logger)
	projector = view.NewProjector(projects, cfg.Views.CacheTTL, logger)

	ctx := context.Background()
	projects.Load(ctx)
	quickTasks.Load(ctx)
	clients.Load(ctx)
	defer func() {
		projects.Close(ctx)
		quickTasks.Close(ctx)
		clients.Close(ctx)
		logger.Info("pending writes flushed")
	}()

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:   projects,
			Views:      projector,
			QuickTasks: quickTasks,
			Clients:    clients,
			Activity:   activitySvc,
			Contacts:   contact.NewHandler(cfg.Contact.CountryCode),
			Notes:      desktop.NewNotesExporter(desktop.NewAppleNotes(logger), desktop.SystemClipboard{}, logger),
			Shell:      desktop.NewOSShell(logger),
			ExportDir:  cfg.Export.Dir,
			PageSize:   cfg.Views.PageSize,
		},
		AuthToken:     cfg.Server.AuthToken,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(logger, mcpServer)
	}
	return runHTTPMode(logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or a signal arrives.
	err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return waitForShutdown(logger, httpServer, errCh)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}
	if size <= keepLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.Seek(size-keepLogSizeBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}
