package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/nodekeeper/internal/services"
)

// Settings prints every setting, or with "set <key> <value>" changes one.
func (a *App) Settings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		snap, err := a.settings.Snapshot(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, v := range snap {
			fmt.Fprintf(tw, "%s\t%s\n", v.Key, v.Value)
		}
		return tw.Flush()
	}

	if args[0] != "set" || len(args) < 3 {
		return fmt.Errorf("usage: settings [set <key> <value>]")
	}
	key, value := args[1], strings.Join(args[2:], " ")

	if err := a.setSetting(ctx, key, value); err != nil {
		return err
	}
	a.printf("%s = %s\n", key, value)
	return nil
}

func (a *App) setSetting(ctx context.Context, key, value string) error {
	s := a.settings

	switch key {
	case services.KeyInvoiceMessagePrefix:
		return s.SetInvoiceMessagePrefix(ctx, value)
	case services.KeyInvoiceMessagePostfix:
		return s.SetInvoiceMessagePostfix(ctx, value)
	case services.KeyInvoiceDefaultMessage:
		return s.SetInvoiceDefaultMessage(ctx, value)
	case services.KeyAuthenticationTouchIDStatus:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return s.SetTouchIDStatus(ctx, b)
	case services.KeyNotificationUpdateInterval:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return s.SetNotificationUpdateInterval(ctx, n)
	case services.KeySetupStatus, services.KeyDefaultServerStatus, services.KeyActiveServer:
		return fmt.Errorf("%s is managed by nodekeeper", key)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
}
