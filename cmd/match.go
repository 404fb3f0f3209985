package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Vallit0/asistencia-senoriales/internal/database"
	"github.com/Vallit0/asistencia-senoriales/internal/detector"
	"github.com/Vallit0/asistencia-senoriales/internal/match"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match the faces in one image against the catalog",
	Long: `Detect faces in an image (or a camera snapshot) and print the best
catalog match for each, including candidates below the threshold. Useful for
calibrating MATCH_THRESHOLD.

When the catalog is stored in PostgreSQL, --top N also lists the N nearest
identities found by pgvector.`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().String("image", "", "Image file to match (default: camera snapshot)")
	matchCmd.Flags().Int("top", 0, "Also list the N nearest identities (PostgreSQL catalog only)")
	matchCmd.Flags().Bool("json", false, "Output as JSON")
}

// FaceMatch is the match output for one detected face.
type FaceMatch struct {
	BBox      [4]float64          `json:"bbox"`
	Result    match.Result        `json:"result"`
	Neighbors []database.Neighbor `json:"neighbors,omitempty"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	top := mustGetInt(cmd, "top")
	jsonOutput := mustGetBool(cmd, "json")
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

	repo, _ := store.(*database.IdentityRepository)
	if top > 0 && repo == nil {
		return fmt.Errorf("--top requires CATALOG_DATABASE_URL")
	}

	frame, err := captureFrame(ctx, cfg, mustGetString(cmd, "image"))
	if err != nil {
		return err
	}

	dets, err := detector.NewClient(cfg.Embedding.URL).Detect(ctx, frame)
	if err != nil {
		return fmt.Errorf("face detection failed: %w", err)
	}

	matcher := match.New(cfg.Match.Threshold)
	results := make([]FaceMatch, 0, len(dets))
	for _, d := range dets {
		fm := FaceMatch{BBox: d.BBox, Result: matcher.Match(d.Embedding, c)}
		if top > 0 {
			fm.Neighbors, err = repo.Nearest(ctx, d.Embedding, top)
			if err != nil {
				return fmt.Errorf("nearest neighbor search failed: %w", err)
			}
		}
		results = append(results, fm)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No faces detected")
		return nil
	}

	fmt.Printf("%d face(s), catalog %d samples, threshold %.2f\n\n", len(results), c.Len(), cfg.Match.Threshold)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FACE\tX\tBEST\tSCORE\tMATCH")
	for i, fm := range results {
		status := "no"
		if fm.Result.Matched {
			status = "yes"
		}
		name := fm.Result.Name
		if name == "" {
			name = "-"
		}
		x := (fm.BBox[0] + fm.BBox[2]) / 2
		fmt.Fprintf(w, "%d\t%.0f\t%s\t%.4f\t%s\n", i+1, x, name, fm.Result.Score, status)
		for _, n := range fm.Neighbors {
			fmt.Fprintf(w, "\t\t  #%d %s\t%.4f\t\n", n.Position, n.Name, n.Similarity)
		}
	}
	return w.Flush()
}
