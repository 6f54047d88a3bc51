package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/NamanBalaji/mcfetch/internal/api"
	"github.com/NamanBalaji/mcfetch/internal/config"
	"github.com/NamanBalaji/mcfetch/internal/engine"
	"github.com/NamanBalaji/mcfetch/internal/logger"
	"github.com/NamanBalaji/mcfetch/internal/pool"
	"github.com/NamanBalaji/mcfetch/internal/repository"
	"github.com/NamanBalaji/mcfetch/internal/status"
	"github.com/NamanBalaji/mcfetch/internal/task"
)

const pollInterval = 500 * time.Millisecond

type options struct {
	configPath string
	debug      bool
	version    string
	label      string
	dest       string
	files      string
	listen     string
	history    bool
}

func main() {
	var opts options

	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to the configuration file")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.StringVar(&opts.version, "version", "", "Game version to download")
	flag.StringVar(&opts.label, "label", "", "Display name of the task")
	flag.StringVar(&opts.dest, "dest", "", "Destination root (default <dataDir>/minecraft)")
	flag.StringVar(&opts.files, "files", "", "YAML list of files to download")
	flag.StringVar(&opts.listen, "listen", "", "Serve the polling API on this address")
	flag.BoolVar(&opts.history, "history", false, "Print finished tasks and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}

	if err := logger.InitLogging(level, cfg.LogFile); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logger.Close()

	repo, err := repository.NewBboltRepository(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	if opts.history {
		defer repo.Close()
		return printHistory(os.Stdout, repo)
	}

	if opts.version == "" || opts.files == "" {
		repo.Close()
		flag.Usage()

		return errors.New("-version and -files are required")
	}

	files, err := task.LoadFiles(opts.files)
	if err != nil {
		repo.Close()
		return err
	}

	dest := opts.dest
	if dest == "" {
		dest = filepath.Join(cfg.DataDir, "minecraft")
	}

	m := engine.NewManager(pool.New(cfg.Download.ThreadPoolSize), engine.WithRepository(repo))

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := m.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Error during shutdown: %v", err)
		}
	}()

	if opts.listen != "" {
		srv := &http.Server{
			Addr:              opts.listen,
			Handler:           api.NewRouter(m),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Infof("Serving task API on %s", opts.listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("API server: %v", err)
			}
		}()

		defer srv.Close()
	}

	id := m.AppendTask(task.NewClient(opts.version, opts.label, dest, &cfg.Download, task.StaticResolver(files)))
	if err := m.StartTask(id); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		if _, ok := <-sigChan; ok {
			logger.Infof("Interrupted, cancelling task %s", id)
			if err := m.CancelTask(id); err != nil {
				logger.Warnf("Cancel: %v", err)
			}
		}
	}()

	snap := watch(m, id, pollInterval)

	switch snap.Status {
	case status.Completed:
		logger.Infof("%s completed: %d bytes in %s", snap.Name, snap.Progress.Total, snap.FinishedAt.Sub(snap.StartedAt).Round(time.Millisecond))
		return nil
	case status.Failed:
		return fmt.Errorf("%s failed: %s", snap.Name, snap.Error)
	default:
		return fmt.Errorf("%s %s", snap.Name, snap.Status)
	}
}
