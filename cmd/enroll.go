package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
	"github.com/Vallit0/asistencia-senoriales/internal/detector"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <name>",
	Short: "Enroll a person from a single face",
	Long: `Enroll a person by capturing one frame and storing its face embedding.

The frame comes from --image or, without it, from the camera snapshot URL.
Exactly one face must be visible; otherwise nothing is saved.

Examples:
  asistencia enroll "Ana López" --image ana.jpg
  asistencia enroll "Luis Pérez"`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	enrollCmd.Flags().String("image", "", "Image file to enroll from (default: camera snapshot)")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
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

	frame, err := captureFrame(ctx, cfg, mustGetString(cmd, "image"))
	if err != nil {
		return err
	}

	dets, err := detector.NewClient(cfg.Embedding.URL).Detect(ctx, frame)
	if err != nil {
		return fmt.Errorf("face detection failed: %w", err)
	}

	if existing := c.Find(name); len(existing) > 0 {
		fmt.Printf("Note: %q already has %d sample(s); adding another\n", existing[0].Name, len(existing))
	}

	if err := c.Enroll(name, detector.Embeddings(dets)); err != nil {
		if errors.Is(err, catalog.ErrEnrollmentAmbiguous) {
			return fmt.Errorf("exactly one face must be visible, found %d: %w", len(dets), err)
		}
		return err
	}

	if err := store.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	fmt.Printf("Enrolled %s (%d samples in catalog)\n", name, c.Len())
	return nil
}
