package commands

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lbliii/chirp/config"
)

func newRoutesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the demo server's route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			app := demoApp(cfg, zap.NewNop())

			routes := app.Router().Routes()
			sort.Slice(routes, func(i, j int) bool {
				return routes[i].Pattern < routes[j].Pattern
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHODS\tPATTERN\tNAME")
			for _, rt := range routes {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					strings.Join(rt.Methods, ","), rt.Pattern, rt.Name())
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to yaml config file")

	return cmd
}
