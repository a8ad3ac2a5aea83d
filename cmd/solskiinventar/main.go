package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/solskiinventar/internal/api"
	"github.com/erazemk/solskiinventar/internal/auth"
	"github.com/erazemk/solskiinventar/internal/config"
	"github.com/erazemk/solskiinventar/internal/db"
	"github.com/erazemk/solskiinventar/internal/imaging"
	"github.com/erazemk/solskiinventar/internal/metrics"
	"github.com/erazemk/solskiinventar/internal/store"
	"github.com/erazemk/solskiinventar/internal/sweeper"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	min    slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath, level string) (func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		min:    lvl,
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// flags holds command-line overrides. Only flags that were actually given
// replace configured values.
type flags struct {
	configPath string
	dbPath     string
	addr       string
	adminUser  string
	logPath    string
	set        map[string]bool
}

func parseFlags(args []string) (*flags, error) {
	fs := flag.NewFlagSet("solskiinventar", flag.ContinueOnError)
	f := &flags{set: map[string]bool{}}

	fs.StringVar(&f.configPath, "config", "", "")
	fs.StringVar(&f.configPath, "c", "", "")
	fs.StringVar(&f.dbPath, "db", "", "")
	fs.StringVar(&f.dbPath, "d", "", "")
	fs.StringVar(&f.addr, "addr", "", "")
	fs.StringVar(&f.addr, "a", "", "")
	fs.StringVar(&f.adminUser, "user", "", "")
	fs.StringVar(&f.adminUser, "u", "", "")
	fs.StringVar(&f.logPath, "log", "", "")
	fs.StringVar(&f.logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: solskiinventar [flags]

Flags:
  -c, -config <path>      YAML config file (default: none)
  -d, -db <path>          SQLite database path (default: solskiinventar.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        default admin username (default: admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Every setting can also be given as a SOLSKIINVENTAR_* environment variable,
optionally from a .env file in the working directory.
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "d":
			f.set["db"] = true
		case "a":
			f.set["addr"] = true
		case "u":
			f.set["user"] = true
		case "l":
			f.set["log"] = true
		default:
			f.set[fl.Name] = true
		}
	})
	return f, nil
}

func (f *flags) apply(cfg *config.Config) {
	if f.set["db"] {
		cfg.DBPath = f.dbPath
	}
	if f.set["addr"] {
		cfg.Addr = f.addr
	}
	if f.set["user"] {
		cfg.Admin.Username = f.adminUser
	}
	if f.set["log"] {
		cfg.LogFile = f.logPath
	}
}

func main() {
	fl, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(fl.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fl.apply(cfg)

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DBPath)

	// A failed seed must not keep the server from starting.
	seed, err := auth.EnsureDefaultAdmin(ctx, database, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password, time.Now())
	if err != nil {
		slog.Error("failed to ensure default admin", "error", err)
	} else if seed.Created && seed.Password != "" {
		printSeedResult(seed)
	}

	// Use the configured JWT secret, or one persisted in the database.
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		if jwtSecret, err = store.JWTSecret(ctx, database); err != nil {
			return err
		}
	}

	m := metrics.New()
	sw := sweeper.New(database, time.Now, m)
	if cfg.SweepSchedule != "" {
		if err := sw.Start(cfg.SweepSchedule); err != nil {
			return err
		}
		defer sw.Stop()
	}

	handler := api.NewRouter(database, api.Options{
		JWTSecret: jwtSecret,
		Now:       time.Now,
		Metrics:   m,
		Sweeper:   sw,
		Images:    imaging.NewProcessor(cfg.ImageMaxDimension),
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// printSeedResult prints the generated default admin password to stdout.
func printSeedResult(seed *auth.SeedResult) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", seed.Username)
	fmt.Printf("  Password: %s\n", seed.Password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println()
}
