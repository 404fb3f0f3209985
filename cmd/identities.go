package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "List enrolled identities",
	Args:  cobra.NoArgs,
	RunE:  runIdentities,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.Flags().Bool("json", false, "Output as JSON")
}

func runIdentities(cmd *cobra.Command, args []string) error {
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

	names := c.Names()
	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	}

	if len(names) == 0 {
		fmt.Println("Catalog is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSAMPLES")
	for _, n := range names {
		fmt.Fprintf(w, "%s\t%d\n", n.Name, n.Samples)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d people, %d samples, %d dimensions\n", len(names), c.Len(), c.Dim())
	return nil
}
