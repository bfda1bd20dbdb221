package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"sweep-runner/config"
	"sweep-runner/core/executor"
	"sweep-runner/core/models"
	"sweep-runner/core/repository"
	"sweep-runner/core/results"
	"sweep-runner/core/spec"
	"sweep-runner/core/sweep"
	"sweep-runner/storage"
)

func main() {
	var (
		specPath  = flag.String("spec", "sweep.yaml", "sweep specification file")
		mode      = flag.String("mode", "", "override sweep mode: train or test")
		workDir   = flag.String("work-dir", "", "override working directory root")
		dryRun    = flag.Bool("dry-run", false, "print the planned jobs without running anything")
		remote    = flag.String("remote", "", "run jobs on this host over SSH instead of locally")
		aggregate = flag.Bool("aggregate", false, "aggregate evaluation metrics into a report after a test sweep")
	)
	flag.Parse()

	cfg := config.Load()
	if err := config.SetupLogging(cfg.LogPath); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	sw, err := spec.LoadSweepSpec(*specPath)
	if err != nil {
		log.Fatalf("Invalid sweep configuration: %v", err)
	}
	if *mode != "" {
		sw.Mode = models.Mode(*mode)
		if sw.Mode != models.ModeTrain && sw.Mode != models.ModeTest {
			log.Fatalf("Invalid mode %q: must be train or test", *mode)
		}
	}
	if *workDir != "" {
		sw.WorkDir = *workDir
	}

	if *dryRun {
		jobs, err := sweep.Plan(sw, "dry-run")
		if err != nil {
			log.Fatalf("Invalid sweep configuration: %v", err)
		}
		for _, job := range jobs {
			fmt.Printf("(axis=%s, epoch=%d) -> %s\n", job.Axis, job.Epoch, job.OutputDir)
		}
		return
	}

	// Cancel in-flight work on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exec executor.JobExecutor
	if *remote != "" {
		sshExec, err := executor.NewSSHExecutor(*remote, cfg.RemotePort, cfg.RemoteUser,
			cfg.RemoteKeyPath, cfg.RemoteRoot, sw.Python, sw.TrainScript, sw.TestScript)
		if err != nil {
			log.Fatalf("Failed to set up remote execution: %v", err)
		}
		exec = sshExec
	} else {
		exec = executor.NewProcessExecutor(sw.Python, sw.TrainScript, sw.TestScript)
	}

	var runRepo *repository.RunRepository
	var jobRepo *repository.JobRepository
	if cfg.DatabaseURL != "" {
		db, err := repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
		runRepo = repository.NewRunRepository(db)
		jobRepo = repository.NewJobRepository(db)
	}

	var store sweep.ArtifactUploader
	if cfg.ArtifactBucket != "" {
		artifactStore, err := storage.NewArtifactStore(ctx, cfg.ArtifactBucket)
		if err != nil {
			log.Fatalf("Failed to set up artifact store: %v", err)
		}
		store = artifactStore
	}

	runner := sweep.NewRunner(exec, runRepo, jobRepo, store)
	if _, err := runner.Run(ctx, sw); err != nil {
		log.Fatalf("Sweep aborted: %v", err)
	}

	if *aggregate && sw.Mode == models.ModeTest {
		summaries, err := results.Aggregate(sw.WorkDir, sw.Phase, sw.Model, sw.Method)
		if err != nil {
			log.Printf("Failed to aggregate results: %v", err)
		} else {
			reportPath := filepath.Join(sw.WorkDir, sw.Phase, "results.txt")
			if err := results.WriteReport(reportPath, sw.Model, summaries); err != nil {
				log.Printf("Failed to write report: %v", err)
			} else {
				log.Printf("Results written to %s", reportPath)
			}
		}
	}

	// Individual job failures do not change the exit code; only
	// configuration errors abort with a non-zero status.
	os.Exit(0)
}
