package main

import (
	"context"
	"fmt"
	"io"

	"github.com/digitalocean/godo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/machine/internal/cloudinit"
	"github.com/yairfalse/machine/internal/config"
	"github.com/yairfalse/machine/internal/provider/digitalocean"
	"github.com/yairfalse/machine/pkg/machine"
)

type createOptions struct {
	Name         string
	Type         string
	Tag          string
	Region       string
	Size         string
	Image        string
	NoInitialize bool
}

var createOpts createOptions

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a machine",
	Long: `Create a droplet. With --type, the droplet is initialized on first boot
by the setup script configured for that machine type, run as a new sudo
user reachable with the configured SSH key.`,
	Example: `  machine create --name web-1 --type web
  machine create -n scratch --no-initialize --region ams3`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createOpts.Name, "name", "n", "", "Name of the new machine")
	createCmd.Flags().StringVarP(&createOpts.Type, "type", "m", "", "Machine type from config")
	createCmd.Flags().StringVarP(&createOpts.Tag, "tag", "t", "", "Extra tag to apply")
	createCmd.Flags().StringVarP(&createOpts.Region, "region", "r", "", "Region (default from config)")
	createCmd.Flags().StringVarP(&createOpts.Size, "size", "s", "", "Droplet size (default from config)")
	createCmd.Flags().StringVarP(&createOpts.Image, "image", "i", "", "Image slug (default from config)")
	createCmd.Flags().BoolVar(&createOpts.NoInitialize, "no-initialize", false, "Do not run the setup script on first boot")
	_ = createCmd.MarkFlagRequired("name")
}

func runCreate(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close(cmd.Context())

	return createMachine(cmd.Context(), cmd.OutOrStdout(), s.client, s.cfg, createOpts)
}

type machineCreator interface {
	SSHKey(ctx context.Context, name string) (godo.Key, error)
	Create(ctx context.Context, req digitalocean.CreateRequest) (machine.Record, error)
}

func createMachine(ctx context.Context, w io.Writer, c machineCreator, cfg *config.Config, opts createOptions) error {
	key, err := c.SSHKey(ctx, cfg.DigitalOcean.SSHKey)
	if err != nil {
		return err
	}

	var userData string
	if opts.Type != "" {
		m, err := cfg.Machine(opts.Type)
		if err != nil {
			return err
		}
		if !opts.NoInitialize {
			userData = cloudinit.Render(m, key.PublicKey, cfg.FQDN(opts.Name))
		}
	}

	req := digitalocean.CreateRequest{
		Name:     opts.Name,
		Region:   orDefault(opts.Region, cfg.DigitalOcean.Region),
		Size:     orDefault(opts.Size, cfg.DigitalOcean.MachineSize),
		Image:    orDefault(opts.Image, cfg.DigitalOcean.Image),
		SSHKeyID: key.ID,
		Tags:     machine.CreationTags(opts.Type, opts.Tag),
		UserData: userData,
	}

	log.Debug().
		Str("name", req.Name).
		Str("region", req.Region).
		Str("size", req.Size).
		Str("image", req.Image).
		Bool("initialize", userData != "").
		Msg("creating droplet")

	r, err := c.Create(ctx, req)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, r.ID)
	return err
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
