// Command trackerd binds jobtracker.Tracker to an HTTP surface, the way the
// teacher's cmd/coordinator binds its JobService: load config, build the
// collaborators the core is wired to (§6), start the REST server, and drain
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/distmr/tracker/internal/api/rest"
	"github.com/distmr/tracker/internal/discovery"
	"github.com/distmr/tracker/internal/jobfactory"
	"github.com/distmr/tracker/internal/jobfactory/examples"
	"github.com/distmr/tracker/internal/jobtracker"
	"github.com/distmr/tracker/internal/localexec"
	"github.com/distmr/tracker/internal/planner"
	"github.com/distmr/tracker/internal/shared/config"
	"github.com/distmr/tracker/internal/shared/logging"
	"github.com/distmr/tracker/internal/shuffle"
	"github.com/distmr/tracker/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogLogger(level).With("trackerd")

	nodeId := jobtracker.NodeId(uuid.New().String())
	if cfg.Cluster.Tag == "" {
		cfg.Cluster.Tag = "default"
	}

	registry := jobfactory.NewRegistry()
	if err := examples.RegisterDefaults(registry); err != nil {
		logger.Fatal("failed to register example jobs", "error", err)
	}
	factory := jobfactory.New(registry)

	memStore := store.NewMemoryStore()
	shuf := shuffle.New()
	disc := discovery.New(nodeId, cfg.Health.CheckInterval, cfg.Health.StaleTimeout, logger)
	disc.Start()
	defer disc.Stop()

	numWorkers := runtime.NumCPU()
	internalExec := localexec.NewExecutor(numWorkers, runJobFunction, logger)
	defer internalExec.Close()
	externalExec := localexec.NewExecutor(numWorkers, runJobFunction, logger)
	defer externalExec.Close()

	tracker := jobtracker.NewTracker(jobtracker.Deps{
		Store:        memStore,
		InternalExec: internalExec,
		ExternalExec: externalExec,
		Shuffle:      shuf,
		Discovery:    disc,
		JobFactory:   factory,
		Planner:      planner.New(),
		Logger:       logger,
		ClusterTag:   cfg.Cluster.Tag,
	})

	addr := cfg.REST.Addr
	server := rest.NewServer(addr, tracker, logger)

	go func() {
		logger.Info("starting REST API", "addr", addr, "node_id", string(nodeId))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down trackerd", "node_id", string(nodeId))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	tracker.Shutdown()

	logger.Info("trackerd stopped")
}

// runJobFunction dispatches a TaskInfo to the registered Map/Reduce/Combine
// functions bundled on the Job produced by the factory. Actual map/reduce
// user-code invocation (reading splits, running shuffle I/O) is a Non-goal
// of this repository (§1); this only proves the plumbing end-to-end for the
// example jobs registered in internal/jobfactory/examples.
func runJobFunction(ctx context.Context, job jobtracker.Job, info jobtracker.TaskInfo) error {
	fjob, ok := job.(*jobfactory.Job)
	if !ok {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	switch info.Type {
	case jobtracker.TaskMap:
		if fjob.Spec.Map != nil && info.Split != nil {
			fjob.Spec.Map(info.Split.Path, "")
		}
	case jobtracker.TaskReduce:
		if fjob.Spec.Reduce != nil {
			fjob.Spec.Reduce("", nil)
		}
	case jobtracker.TaskCombine:
		if fjob.Spec.Combine != nil {
			fjob.Spec.Combine("", nil)
		}
	}

	return nil
}
