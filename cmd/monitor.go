package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vallit0/asistencia-senoriales/internal/capture"
	"github.com/Vallit0/asistencia-senoriales/internal/config"
	"github.com/Vallit0/asistencia-senoriales/internal/detector"
	"github.com/Vallit0/asistencia-senoriales/internal/monitor"
	"github.com/Vallit0/asistencia-senoriales/internal/web"
	"github.com/Vallit0/asistencia-senoriales/internal/zone"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the camera and record attendance events",
	Long: `Run the recognition loop: capture a frame, detect faces, match them
against the catalog and record ENTRADA / SALIDA events.

Modes:
  zone    a person walking from the door zone into the left or right office
          zone produces ENTRADA, walking back produces SALIDA (default)
  simple  every recognized person produces ENTRADA, at most once per dedup window

Frames come from the camera snapshot URL, or from a directory of images with
--source (replayed in name order, useful for calibration).

With --serve the operator API is started on the given address.

Examples:
  asistencia monitor
  asistencia monitor --mode simple --serve :8080
  asistencia monitor --source ./recording --threshold 0.5`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().String("mode", string(monitor.ModeZone), "Detection mode: zone or simple")
	monitorCmd.Flags().String("source", "", "Directory of frames to replay instead of the camera")
	monitorCmd.Flags().String("serve", "", "Address for the operator API (e.g. :8080); empty disables it")
	monitorCmd.Flags().Float64("threshold", 0, "Override the match threshold")
	monitorCmd.Flags().String("run-id", "", "Run identifier stored with database events (default: random UUID)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	mode, err := monitor.ParseMode(mustGetString(cmd, "mode"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if t, _ := cmd.Flags().GetFloat64("threshold"); t > 0 {
		cfg.Match.Threshold = t
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openCatalogStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	c, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if c.Len() == 0 {
		log.Printf("Warning: catalog is empty, nobody will be recognized until someone is enrolled")
	}

	source, err := openSource(cfg, mustGetString(cmd, "source"))
	if err != nil {
		return err
	}

	proc := monitor.NewProcessor(c, monitor.Options{
		Mode:            mode,
		Threshold:       cfg.Match.Threshold,
		DedupWindow:     cfg.Dedup.Window,
		Boundaries:      zone.Boundaries{Left: cfg.Zones.Left, Right: cfg.Zones.Right},
		FrameWidth:      cfg.Zones.FrameWidth,
		SweepInterval:   cfg.Zones.SweepInterval,
		IndexMinSize:    cfg.Match.IndexMinSize,
		IndexCandidates: cfg.Match.IndexCandidates,
	})

	runID, err := monitor.ResolveRunID(mustGetString(cmd, "run-id"))
	if err != nil {
		return err
	}
	evStore, err := openEventStore(ctx, cfg, runID)
	if err != nil {
		return err
	}
	defer evStore.close()

	runner := monitor.NewRunner(source, detector.NewClient(cfg.Embedding.URL), proc, evStore.sink, runID)
	runner.SkipStillFrames(cfg.Camera.StillDistance)

	b := proc.Boundaries()
	fmt.Printf("Monitoring in %s mode (run %s)\n", mode, runner.RunID())
	fmt.Printf("  Catalog:   %d samples\n", c.Len())
	fmt.Printf("  Threshold: %.2f\n", cfg.Match.Threshold)
	if mode == monitor.ModeZone {
		fmt.Printf("  Zones:     left < %.0f < door < %.0f < right (frame width %d)\n", b.Left, b.Right, cfg.Zones.FrameWidth)
	} else {
		fmt.Printf("  Dedup:     %s\n", cfg.Dedup.Window)
	}

	var server *web.Server
	if addr := mustGetString(cmd, "serve"); addr != "" {
		server = web.NewServer(web.Deps{
			Runner:         runner,
			Catalog:        store,
			Events:         evStore.reader,
			AllowedOrigins: cfg.Web.AllowedOrigins,
		}, addr)
		go func() {
			if err := server.Start(); err != nil {
				log.Printf("Warning: web server stopped: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	runErr := runner.Run(ctx)

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: server shutdown: %v", err)
		}
	}

	stats := runner.Stats()
	fmt.Printf("\nProcessed %d frames (%d errors, %d still skipped), %d entries, %d exits\n",
		stats.Frames, stats.FrameErrors, stats.StillFrames, stats.Entries, stats.Exits)
	if stats.SinkErrors > 0 {
		log.Printf("Warning: %d events could not be persisted", stats.SinkErrors)
	}
	return runErr
}

func openSource(cfg *config.Config, dir string) (capture.Source, error) {
	if dir != "" {
		src, err := capture.NewDirSource(dir, cfg.Zones.FrameWidth)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Replaying %d frames from %s\n", src.Len(), dir)
		return src, nil
	}
	if cfg.Camera.SnapshotURL == "" {
		return nil, errors.New("CAMERA_SNAPSHOT_URL is required (or use --source)")
	}
	return capture.NewSnapshotSource(cfg.Camera.SnapshotURL, cfg.Camera.Username, cfg.Camera.Password,
		cfg.Camera.PollInterval, cfg.Zones.FrameWidth), nil
}
