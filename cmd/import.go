package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Vallit0/asistencia-senoriales/internal/capture"
	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
	"github.com/Vallit0/asistencia-senoriales/internal/detector"
	"github.com/Vallit0/asistencia-senoriales/internal/facematch"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Enroll everyone from a directory of photos",
	Long: `Enroll one sample per image in a directory. The person's name is taken
from the file name: "maria_jose-pena.jpg" is enrolled as "maria jose pena".

Images without exactly one face are skipped and reported. The catalog is
saved once at the end; use --dry-run to only report what would be enrolled.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("dry-run", false, "Detect faces but do not save the catalog")
}

func runImport(cmd *cobra.Command, args []string) error {
	dir := args[0]
	dryRun := mustGetBool(cmd, "dry-run")
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := capture.ListImages(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No images found in %s\n", dir)
		return nil
	}

	store, closeStore, err := openCatalogStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	c, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	det := detector.NewClient(cfg.Embedding.URL)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var enrolled int
	var skipped []string
	for _, path := range files {
		name := facematch.DisplayNameFromFile(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if err := importOne(ctx, c, det, path, name, cfg.Zones.FrameWidth); err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", filepath.Base(path), err))
		} else {
			enrolled++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	for _, s := range skipped {
		log.Printf("Warning: skipped %s", s)
	}
	fmt.Printf("Enrolled %d of %d images (%d skipped), catalog has %d samples\n",
		enrolled, len(files), len(skipped), c.Len())

	if dryRun {
		fmt.Println("Dry run, catalog not saved")
		return nil
	}
	if enrolled == 0 {
		return nil
	}
	if err := store.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

func importOne(ctx context.Context, c *catalog.Catalog, det detector.Detector, path, name string, width int) error {
	if name == "" {
		return errors.New("empty name")
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the listed directory
	if err != nil {
		return err
	}
	frame, err := capture.Normalize(data, width)
	if err != nil {
		return err
	}
	dets, err := det.Detect(ctx, frame)
	if err != nil {
		return err
	}
	if err := c.Enroll(name, detector.Embeddings(dets)); err != nil {
		if errors.Is(err, catalog.ErrEnrollmentAmbiguous) {
			return fmt.Errorf("%d faces detected", len(dets))
		}
		return err
	}
	return nil
}
