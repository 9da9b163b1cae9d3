// Package digitalocean implements the droplet client on top of godo.
package digitalocean

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitalocean/godo"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/machine/internal/filter"
	"github.com/yairfalse/machine/pkg/machine"
)

const (
	tracerName = "github.com/yairfalse/machine/internal/provider/digitalocean"
	perPage    = 200
)

// ErrKeyNotFound is returned when no SSH key has the requested name.
var ErrKeyNotFound = errors.New("ssh key not found")

// DropletsAPI defines the droplet operations used by the client.
type DropletsAPI interface {
	List(ctx context.Context, opt *godo.ListOptions) ([]godo.Droplet, *godo.Response, error)
	ListByName(ctx context.Context, name string, opt *godo.ListOptions) ([]godo.Droplet, *godo.Response, error)
	ListByTag(ctx context.Context, tag string, opt *godo.ListOptions) ([]godo.Droplet, *godo.Response, error)
	Create(ctx context.Context, req *godo.DropletCreateRequest) (*godo.Droplet, *godo.Response, error)
	Delete(ctx context.Context, id int) (*godo.Response, error)
}

// KeysAPI defines the SSH key operations used by the client.
type KeysAPI interface {
	List(ctx context.Context, opt *godo.ListOptions) ([]godo.Key, *godo.Response, error)
}

// Client talks to the DigitalOcean API.
type Client struct {
	droplets DropletsAPI
	keys     KeysAPI
	tracer   trace.Tracer
}

// New creates a client authenticated with token.
func New(token string) *Client {
	c := godo.NewFromToken(token)
	return NewWithAPIs(c.Droplets, c.Keys)
}

// NewWithAPIs creates a client from explicit API implementations.
func NewWithAPIs(droplets DropletsAPI, keys KeysAPI) *Client {
	return &Client{
		droplets: droplets,
		keys:     keys,
		tracer:   otel.Tracer(tracerName),
	}
}

// Capabilities reports the narrowing parameters the droplet list accepts.
func (c *Client) Capabilities() filter.Capabilities {
	return filter.Capabilities{ByName: true, ByTag: true}
}

// List returns all droplets matching q, following pagination.
func (c *Client) List(ctx context.Context, q filter.Query) ([]machine.Record, error) {
	ctx, span := c.tracer.Start(ctx, "droplets.list", trace.WithAttributes(
		attribute.String("query.kind", q.Kind.String()),
		attribute.String("query.value", q.Value),
	))
	defer span.End()

	fetch := func(opt *godo.ListOptions) ([]godo.Droplet, *godo.Response, error) {
		switch q.Kind {
		case filter.QueryByName:
			return c.droplets.ListByName(ctx, q.Value, opt)
		case filter.QueryByTag:
			return c.droplets.ListByTag(ctx, q.Value, opt)
		default:
			return c.droplets.List(ctx, opt)
		}
	}

	var records []machine.Record
	opt := &godo.ListOptions{Page: 1, PerPage: perPage}

	for {
		droplets, resp, err := fetch(opt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("list droplets: %w", err)
		}

		for _, d := range droplets {
			records = append(records, convertDroplet(d))
		}
		log.Debug().Ctx(ctx).Int("page", opt.Page).Int("count", len(droplets)).Msg("listed droplets")

		next, ok := nextPage(resp)
		if !ok {
			break
		}
		opt.Page = next
	}

	span.SetAttributes(attribute.Int("droplets", len(records)))
	return records, nil
}

// CreateRequest describes a droplet to create.
type CreateRequest struct {
	Name     string
	Region   string
	Size     string
	Image    string // Image slug
	SSHKeyID int
	Tags     machine.Tags
	UserData string
}

// Create creates a droplet and returns it as a record.
func (c *Client) Create(ctx context.Context, req CreateRequest) (machine.Record, error) {
	ctx, span := c.tracer.Start(ctx, "droplets.create", trace.WithAttributes(
		attribute.String("droplet.name", req.Name),
		attribute.String("droplet.region", req.Region),
	))
	defer span.End()

	createReq := &godo.DropletCreateRequest{
		Name:     req.Name,
		Region:   req.Region,
		Size:     req.Size,
		Image:    godo.DropletCreateImage{Slug: req.Image},
		Tags:     []string(req.Tags),
		UserData: req.UserData,
	}
	if req.SSHKeyID != 0 {
		createReq.SSHKeys = []godo.DropletCreateSSHKey{{ID: req.SSHKeyID}}
	}

	d, _, err := c.droplets.Create(ctx, createReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return machine.Record{}, fmt.Errorf("create droplet %s: %w", req.Name, err)
	}

	log.Info().Ctx(ctx).Int("id", d.ID).Str("name", d.Name).Msg("droplet created")
	return convertDroplet(*d), nil
}

// Delete deletes the droplet with the given id.
func (c *Client) Delete(ctx context.Context, id int) error {
	ctx, span := c.tracer.Start(ctx, "droplets.delete", trace.WithAttributes(
		attribute.Int("droplet.id", id),
	))
	defer span.End()

	if _, err := c.droplets.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete droplet %d: %w", id, err)
	}

	log.Info().Ctx(ctx).Int("id", id).Msg("droplet deleted")
	return nil
}

// SSHKey returns the account SSH key called name.
func (c *Client) SSHKey(ctx context.Context, name string) (godo.Key, error) {
	ctx, span := c.tracer.Start(ctx, "keys.lookup", trace.WithAttributes(
		attribute.String("key.name", name),
	))
	defer span.End()

	opt := &godo.ListOptions{Page: 1, PerPage: perPage}
	for {
		keys, resp, err := c.keys.List(ctx, opt)
		if err != nil {
			span.RecordError(err)
			return godo.Key{}, fmt.Errorf("list ssh keys: %w", err)
		}

		for _, k := range keys {
			if k.Name == name {
				return k, nil
			}
		}

		next, ok := nextPage(resp)
		if !ok {
			break
		}
		opt.Page = next
	}

	return godo.Key{}, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
}

// nextPage returns the page after resp, or false on the last page.
func nextPage(resp *godo.Response) (int, bool) {
	if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
		return 0, false
	}
	page, err := resp.Links.CurrentPage()
	if err != nil {
		return 0, false
	}
	return page + 1, true
}

func convertDroplet(d godo.Droplet) machine.Record {
	r := machine.Record{
		ID:   d.ID,
		Name: d.Name,
		Tags: machine.Tags(d.Tags),
	}
	if d.Region != nil {
		r.Region = d.Region.Slug
	}
	if ip, err := d.PublicIPv4(); err == nil {
		r.IPAddress = ip
	}
	return r
}
