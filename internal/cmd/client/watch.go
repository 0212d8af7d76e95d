package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	psclient "github.com/rzbill/partysearch/internal/client"
	"github.com/rzbill/partysearch/internal/partition"
	logpkg "github.com/rzbill/partysearch/pkg/log"
)

// NewWatchCommand constructs the `watch` command. It follows the live feed
// and prints the grouped view after every update.
func NewWatchCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the live feed and print the aggregated view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mapName, _ := cmd.Flags().GetString("map")
			expr, _ := cmd.Flags().GetString("filter")
			once, _ := cmd.Flags().GetBool("once")
			asJSON, _ := cmd.Flags().GetBool("json")
			ping, _ := cmd.Flags().GetDuration("ping")

			filter, err := psclient.CompileFilter(expr)
			if err != nil {
				return fmt.Errorf("invalid --filter: %w", err)
			}
			view := psclient.ViewOptions{MapName: mapName, Filter: filter}
			out := cmd.OutOrStdout()
			render := func(agg *psclient.Aggregator) {
				if asJSON {
					_ = json.NewEncoder(out).Encode(agg.View(view))
					return
				}
				printView(out, agg.View(view))
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			c, err := psclient.New(psclient.Options{
				API:          psclient.NewAPI(baseURL()),
				PingInterval: ping,
				Logger:       logpkg.NewLogger(logpkg.WithLevel(logpkg.WarnLevel), logpkg.WithOutput(logpkg.NewWriterOutput(cmd.ErrOrStderr()))),
				OnUpdate: func(agg *psclient.Aggregator) {
					if !once {
						render(agg)
					}
				},
			})
			if err != nil {
				return err
			}
			done := make(chan error, 1)
			go func() { done <- c.Run(ctx) }()

			if once {
				select {
				case <-c.Ready():
					render(c.Aggregator())
					cancel()
				case err := <-done:
					return err
				}
			}
			return <-done
		},
	}
	cmd.Flags().String("map", "", "Only show this map (catalog name)")
	cmd.Flags().String("filter", "", "CEL expression over parties, e.g. 'level >= 20'")
	cmd.Flags().Bool("once", false, "Print the view once the baseline is loaded and exit")
	cmd.Flags().Bool("json", false, "Print views as JSON")
	cmd.Flags().Duration("ping", 30*time.Second, "Keepalive ping interval (0 disables)")
	return cmd
}

func printView(w io.Writer, maps []psclient.MapView) {
	if len(maps) == 0 {
		fmt.Fprintln(w, "no active party searches")
		return
	}
	for _, m := range maps {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("map %d", m.MapID)
		}
		fmt.Fprintf(w, "%s (%d)\n", name, m.MapID)
		for _, d := range m.Districts {
			fmt.Fprintf(w, "  district %d\n", d.District)
			for _, g := range d.Groups {
				fmt.Fprintf(w, "    %s\n", partition.SearchType(g.SearchType))
				for _, p := range g.Parties {
					fmt.Fprintf(w, "      %-20s size=%d lvl=%d  %s\n", p.Sender, p.PartySize, p.Level, p.Message)
				}
			}
		}
	}
}

