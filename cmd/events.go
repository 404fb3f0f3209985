package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vallit0/asistencia-senoriales/internal/constants"
	"github.com/Vallit0/asistencia-senoriales/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recorded attendance events",
	Long: `Show the most recent attendance events, oldest first.

Events are read from EVENT_DATABASE_URL when set, otherwise from the JSON
event log.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().Int("limit", constants.DefaultEventsLimit, "Number of events to show (0 = all)")
	eventsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runEvents(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	evStore, err := openEventStore(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer evStore.close()

	list, err := evStore.reader.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	if limit > 0 {
		list = events.Last(list, limit)
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("No events recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tNAME")
	for _, e := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Kind, e.Name)
	}
	return w.Flush()
}
