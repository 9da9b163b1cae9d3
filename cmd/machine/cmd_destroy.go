package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yairfalse/machine/internal/filter"
)

var (
	destroySpec filter.Spec
	destroyYes  bool
)

// destroyCmd represents the destroy command
var destroyCmd = &cobra.Command{
	Use:   "destroy [ID...]",
	Short: "Destroy machines",
	Long: `Destroy droplets by ID, or destroy the single droplet matching the
given filters. Filters that match zero or several droplets are an error.`,
	Example: `  machine destroy 123456789
  machine destroy --name web-1 --yes`,
	RunE: runDestroy,
}

func init() {
	rootCmd.AddCommand(destroyCmd)

	addFilterFlags(destroyCmd, &destroySpec)
	destroyCmd.Flags().BoolVarP(&destroyYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDestroy(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close(cmd.Context())

	d := destroyer{
		client: s.client,
		in:     bufio.NewReader(cmd.InOrStdin()),
		out:    cmd.OutOrStdout(),
		yes:    destroyYes,
	}
	if len(ids) > 0 {
		if destroySpec != (filter.Spec{}) {
			return fmt.Errorf("machine IDs cannot be combined with filters")
		}
		return d.destroyIDs(cmd.Context(), ids)
	}
	return d.destroyMatch(cmd.Context(), destroySpec)
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid machine ID: %s", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type machineDeleter interface {
	machineLister
	Delete(ctx context.Context, id int) error
}

type destroyer struct {
	client machineDeleter
	in     *bufio.Reader
	out    io.Writer
	yes    bool
}

func (d destroyer) destroyIDs(ctx context.Context, ids []int) error {
	for _, id := range ids {
		if !d.confirm(fmt.Sprintf("Destroy machine %d?", id)) {
			continue
		}
		if err := d.client.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (d destroyer) destroyMatch(ctx context.Context, spec filter.Spec) error {
	records, err := filter.Find(ctx, d.client, spec, d.client.Capabilities())
	if err != nil {
		return err
	}

	r, err := filter.ExactlyOne(records)
	if err != nil {
		return err
	}

	if !d.confirm(fmt.Sprintf("Destroy machine %s (%d)?", r.Name, r.ID)) {
		return nil
	}
	return d.client.Delete(ctx, r.ID)
}

func (d destroyer) confirm(prompt string) bool {
	if d.yes {
		return true
	}
	_, _ = fmt.Fprintf(d.out, "%s [y/N] ", prompt)
	answer, _ := d.in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
