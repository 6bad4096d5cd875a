package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/harborlight-systems/engagewatch/internal/config"
	"github.com/harborlight-systems/engagewatch/internal/watcher"
)

var (
	watchDaemon   bool
	watchInterval string
	watchStop     bool
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the data and alert on outcome changes",
	Long: `Run a monitor that periodically re-evaluates the stored facts.
Alerts fire when outcomes change between evaluations: a new promoter
qualifies, the top initiative changes, or an activity drops to a
discontinue recommendation.

Examples:
  engagewatch watch                    # run in foreground (ctrl-c to stop)
  engagewatch watch --daemon           # run in background, write PID file
  engagewatch watch --interval 5m      # check every 5 minutes (default: 15m)
  engagewatch watch --stop             # stop the background daemon`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "15m", "Check interval as duration string (e.g. 5m, 1h)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	rootCmd.AddCommand(watchCmd)
}

func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	cfg, err := setup()
	if err != nil {
		return err
	}

	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
	}
	if interval < 30*time.Second {
		return fmt.Errorf("interval must be at least 30s, got %s", interval)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if watchDaemon {
		return runDaemon(db, cfg, interval)
	}
	return runForeground(db, cfg, interval)
}

// runForeground runs the watcher with live terminal output until
// interrupted.
func runForeground(source watcher.FactSource, cfg *config.Config, interval time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	if !watchQuiet {
		fmt.Printf("engagewatch watching... (checking every %s)\n", interval)
	}

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		if !watchQuiet {
			printAlert(a)
		}
	}

	w := watcher.New(source, cfg.Engine, interval, alertFn)

	initial, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("initial evaluation failed: %w", err)
	}
	if !watchQuiet {
		fmt.Printf("[%s] baseline: %d promoters, top initiative %s\n",
			time.Now().Format("15:04:05"), initial.PromoterCount, initial.TopActivityID)
	}

	err = w.Run(ctx)
	if err == context.Canceled {
		if !watchQuiet {
			fmt.Println("\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding is done by the caller (nohup, &, etc.).
func runDaemon(source watcher.FactSource, cfg *config.Config, interval time.Duration) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	writeLog(logFile, "engagewatch daemon started (PID %d, interval %s)", pid, interval)

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		writeLog(logFile, "[%s] %s: %s", a.Level, a.Title, a.Message)
	}

	w := watcher.New(source, cfg.Engine, interval, alertFn)

	err = w.Run(ctx)
	if err == context.Canceled {
		writeLog(logFile, "daemon stopped")
		return nil
	}
	return err
}

func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

func writeLog(f *os.File, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(f, "[%s] %s\n", timestamp, msg)
}

func printAlert(a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Printf("[%s] %s %s\n", timestamp, alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Printf("         %s\n", a.Message)
	}
}

func alertIcon(level string) string {
	switch level {
	case "critical":
		return "\xf0\x9f\x94\xb4" // red circle
	case "warning":
		return "\xe2\x9a\xa0\xef\xb8\x8f" // warning sign
	case "info":
		return "\xe2\x9c\x93" // check mark
	default:
		return " "
	}
}
