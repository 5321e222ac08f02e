package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
	"github.com/dmitrijs2005/nodekeeper/internal/models"
	"github.com/dmitrijs2005/nodekeeper/internal/netx"
	"github.com/dmitrijs2005/nodekeeper/internal/services"
	"github.com/dmitrijs2005/nodekeeper/internal/txqueue"
)

// argsOrPrompt returns args padded with answers to the prompts for every
// missing position.
func (a *App) argsOrPrompt(args []string, prompts ...string) ([]string, error) {
	out := make([]string, len(prompts))
	for i, p := range prompts {
		if i < len(args) {
			out[i] = args[i]
			continue
		}
		v, err := getSimpleText(a.reader, p, a.out)
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, fmt.Errorf("%s is required", p)
		}
		out[i] = v
	}
	return out, nil
}

func (a *App) printServers(ctx context.Context, recs []models.ServerRecord) {
	active, _ := a.settings.ActiveServer(ctx)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tADDRESS\tPROTOCOL\tPORT\tDEFAULT")
	for _, r := range recs {
		mark := ""
		if r.Address == active {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", mark, r.Address, r.ProtocolType, r.Port, r.IsDefault)
	}
	_ = tw.Flush()
}

func (a *App) ListServers(ctx context.Context, _ []string) error {
	recs, err := a.registry.List(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.println("No servers registered.")
		return nil
	}
	a.printServers(ctx, recs)
	return nil
}

func (a *App) ShowDefaults(ctx context.Context, _ []string) error {
	recs, err := a.registry.Defaults(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.println("No default servers in the registry.")
		return nil
	}
	a.printServers(ctx, recs)
	return nil
}

// AddServer validates the address first so a duplicate is reported before
// anything is queued.
func (a *App) AddServer(ctx context.Context, args []string) error {
	v, err := a.argsOrPrompt(args, "Address", "Protocol", "Port")
	if err != nil {
		return err
	}
	address, protocol, port := v[0], v[1], v[2]

	if err := netx.ValidateEndpoint(address, port); err != nil {
		return err
	}
	if err := a.registry.ValidateUniqueness(ctx, address); err != nil {
		return err
	}

	err = services.Wait(ctx, func(done txqueue.Completion) {
		a.registry.CreateAsync(ctx, address, protocol, port, done)
	})
	if err != nil {
		return err
	}
	a.printf("Added %s.\n", address)
	return nil
}

func (a *App) EditServer(ctx context.Context, args []string) error {
	v, err := a.argsOrPrompt(args, "Address", "New protocol", "New address", "New port")
	if err != nil {
		return err
	}

	if err := netx.ValidateEndpoint(v[2], v[3]); err != nil {
		return err
	}

	rec, err := a.find(ctx, v[0])
	if err != nil {
		return err
	}

	err = services.Wait(ctx, func(done txqueue.Completion) {
		a.registry.UpdateAsync(ctx, rec, v[1], v[2], v[3], done)
	})
	if err != nil {
		return err
	}
	a.printf("Updated %s.\n", v[2])
	return nil
}

func (a *App) DeleteServer(ctx context.Context, args []string) error {
	v, err := a.argsOrPrompt(args, "Address")
	if err != nil {
		return err
	}

	rec, err := a.find(ctx, v[0])
	if err != nil {
		return err
	}

	err = services.Wait(ctx, func(done txqueue.Completion) {
		a.registry.DeleteAsync(ctx, rec, done)
	})
	if errors.Is(err, common.ErrEmptyRegistry) {
		return errors.New("cannot delete the last server")
	}
	if err != nil {
		return err
	}
	a.printf("Deleted %s.\n", rec.Address)
	return nil
}

// UseServer points the active pointer at a registered address. The
// registry setter itself does not validate, so the shell checks first.
func (a *App) UseServer(ctx context.Context, args []string) error {
	v, err := a.argsOrPrompt(args, "Address")
	if err != nil {
		return err
	}

	rec, err := a.find(ctx, v[0])
	if err != nil {
		return err
	}
	if err := a.registry.SetActive(ctx, rec.Address); err != nil {
		return err
	}
	a.printf("Active server: %s\n", rec.Address)
	return nil
}

func (a *App) ShowActive(ctx context.Context, _ []string) error {
	rec, err := a.registry.Active(ctx)
	if err != nil {
		return err
	}
	a.printf("%s %s\n", rec.ProtocolType, netx.HostPort(rec.Address, rec.Port))
	return nil
}

func (a *App) find(ctx context.Context, address string) (models.ServerRecord, error) {
	recs, err := a.registry.List(ctx)
	if err != nil {
		return models.ServerRecord{}, err
	}
	for _, r := range recs {
		if r.Address == address {
			return r, nil
		}
	}
	return models.ServerRecord{}, fmt.Errorf("server %q: %w", address, common.ErrorNotFound)
}
