package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"no-lights-schedule/internal/render"
	"no-lights-schedule/internal/schedule"
)

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the outage intervals of a group for today and the next day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd.Context(), opts.source)
			if err != nil {
				return err
			}
			group := schedule.PickDefault(ds, opts.group, "")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", schedule.DisplayName(ds.Preset, group))
			for _, s := range render.Summaries(ds, group) {
				fmt.Fprintf(out, "%s: %s\n", s.Label, s.Text)
			}
			return nil
		},
	}
}

func newGroupsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the groups of a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd.Context(), opts.source)
			if err != nil {
				return err
			}
			for _, g := range schedule.DatasetGroups(ds) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g, schedule.DisplayName(ds.Preset, g))
			}
			return nil
		},
	}
}
