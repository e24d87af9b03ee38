package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"no-lights-schedule/internal/render"
)

func newRenderCmd(opts *options) *cobra.Command {
	var mode, day, defaultGroup string
	var containers []string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the view-models of a dataset as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := render.ParseMode(mode)
			if err != nil {
				return err
			}
			d, err := render.ParseDay(day)
			if err != nil {
				return err
			}
			ds, err := loadDataset(cmd.Context(), opts.source)
			if err != nil {
				return err
			}
			cs := make([]render.Container, len(containers))
			for i, c := range containers {
				cs[i] = render.Container(c)
			}
			res, err := render.Render(ds, render.Options{Mode: m, Day: d}, render.Request{
				Group:        opts.group,
				DefaultGroup: defaultGroup,
				Containers:   cs,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "full", "full, emergency, week, groups, summary or auto")
	cmd.Flags().StringVarP(&day, "day", "d", "today", "today or tomorrow")
	cmd.Flags().StringVar(&defaultGroup, "default-group", "", "group used when --group is absent from the dataset")
	cmd.Flags().StringSliceVar(&containers, "containers", nil, "views to build in auto mode (today,week,groups,summary)")
	return cmd
}
