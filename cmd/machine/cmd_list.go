package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/yairfalse/machine/internal/filter"
	"github.com/yairfalse/machine/internal/output"
)

var (
	listSpec   filter.Spec
	listOutput string
	listQuiet  bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List machines",
	Long: `List droplets created by machine, optionally filtered.

Only one filter can be sent to the DigitalOcean API per request; the rest
are applied locally, so any combination of filters can be used.`,
	Example: `  machine list                        # All machines created by this tool
  machine list --type web --region nyc1
  machine list --tag prod -o json
  machine list --name web-1 --unique -q  # Print the ID, fail on duplicates
  machine list --all                  # Include droplets not created here`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	addFilterFlags(listCmd, &listSpec)
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "", "Output format: plain, json")
	listCmd.Flags().BoolVarP(&listQuiet, "quiet", "q", false, "Only display machine IDs")
	listCmd.Flags().BoolVar(&listSpec.Unique, "unique", false, "Return an error if there is more than one match")
}

// addFilterFlags registers the flags shared by commands that select droplets.
func addFilterFlags(cmd *cobra.Command, spec *filter.Spec) {
	cmd.Flags().StringVarP(&spec.Name, "name", "n", "", "Filter by name")
	cmd.Flags().StringVarP(&spec.Tag, "tag", "t", "", "Filter by tag")
	cmd.Flags().StringVarP(&spec.Type, "type", "m", "", "Filter by machine type")
	cmd.Flags().StringVarP(&spec.Region, "region", "r", "", "Filter by region")
	cmd.Flags().BoolVar(&spec.IncludeForeign, "all", false, "Include machines not created by this tool")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := listFormat(listOutput, listQuiet)
	if err != nil {
		return err
	}

	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close(cmd.Context())

	return listMachines(cmd.Context(), cmd.OutOrStdout(), s.client, listSpec, format)
}

// listFormat resolves --output and --quiet; an explicit json output wins.
func listFormat(out string, quiet bool) (output.Format, error) {
	format, err := output.ParseFormat(out)
	if err != nil {
		return "", err
	}
	if quiet && format != output.FormatJSON {
		format = output.FormatQuiet
	}
	return format, nil
}

// machineLister is a filter.Lister that knows its own capabilities.
type machineLister interface {
	filter.Lister
	Capabilities() filter.Capabilities
}

func listMachines(ctx context.Context, w io.Writer, l machineLister, spec filter.Spec, format output.Format) error {
	records, err := filter.Find(ctx, l, spec, l.Capabilities())
	if err != nil {
		return err
	}

	if spec.Unique {
		if err := filter.AtMostOne(len(records)); err != nil {
			return err
		}
	}

	return output.Write(w, format, records)
}
