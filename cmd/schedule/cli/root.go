// Package cli implements the schedule command line: rendering a dataset
// file or URL to view-model JSON or condensed text.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"no-lights-schedule/internal/outage"
	"no-lights-schedule/internal/schedule"
)

type options struct {
	source string
	group  string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "schedule",
		Short:        "Render outage schedule datasets",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.source, "file", "f", "", "dataset file path or http(s) URL")
	root.PersistentFlags().StringVarP(&opts.group, "group", "g", "", "group key, e.g. GPV1.1")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(newRenderCmd(opts), newSummaryCmd(opts), newGroupsCmd(opts))
	return root
}

// Execute runs the CLI.
func Execute() error { return NewRootCmd().Execute() }

func loadDataset(ctx context.Context, location string) (*schedule.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	body, err := outage.NewSource(location).Load(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := schedule.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return schedule.Normalize(ds), nil
}
