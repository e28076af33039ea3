package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/dhiya-foods/orderboard/internal/backend"
	"github.com/dhiya-foods/orderboard/internal/config"
	"github.com/dhiya-foods/orderboard/internal/menu"
	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/orderid"
	"github.com/dhiya-foods/orderboard/internal/service"
	"github.com/dhiya-foods/orderboard/internal/store"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage: posctl <menu | place Item=Qty... | queue | orders | serve ID | cancel ID>")

// run executes one command and returns the process exit code.
func run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, errUsage)
		return exitUsage
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "menu":
		err = cmdMenu(ctx, cfg, stdout)
	case "place":
		err = cmdPlace(ctx, cfg, rest, stdout)
	case "queue":
		err = cmdList(ctx, cfg, stdout, true)
	case "orders":
		err = cmdList(ctx, cfg, stdout, false)
	case "serve":
		err = cmdTransition(ctx, cfg, rest, stdout, order.StatusServed)
	case "cancel":
		err = cmdTransition(ctx, cfg, rest, stdout, order.StatusCancelled)
	default:
		err = fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}

	if err != nil {
		fmt.Fprintln(stderr, describe(err))
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func cmdMenu(ctx context.Context, cfg *config.Config, out io.Writer) error {
	sess, err := service.NewSession(ctx, menu.NewSource(cfg.MenuSource, cfg.MenuTimeout))
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(out)
	table.Header("Item", "Price")
	for _, it := range sess.Catalog.Items() {
		if err := table.Append([]string{it.Name, it.Price.Fixed()}); err != nil {
			return err
		}
	}
	return table.Render()
}

func cmdPlace(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	selections, err := parseSelections(args)
	if err != nil {
		return err
	}

	// Validate against the menu before opening the store.
	sess, err := service.NewSession(ctx, menu.NewSource(cfg.MenuSource, cfg.MenuTimeout))
	if err != nil {
		return err
	}
	s, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.NewOrderService(s, order.NewBuilder(orderid.New(cfg.OrderIDLength), nil))
	rec, err := svc.PlaceOrder(ctx, sess, selections)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Order %s placed.\n", rec.ID)
	table := tablewriter.NewWriter(out)
	table.Header("Item", "Qty", "Price", "Subtotal")
	for _, l := range rec.Lines {
		price, _ := sess.Catalog.PriceOf(l.Item)
		sub, _ := price.Mul(l.Quantity)
		if err := table.Append([]string{l.Item, strconv.Itoa(l.Quantity), price.Fixed(), sub.Fixed()}); err != nil {
			return err
		}
	}
	table.Footer("", "", "Total", rec.Total.Fixed())
	return table.Render()
}

func cmdList(ctx context.Context, cfg *config.Config, out io.Writer, activeOnly bool) error {
	s, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	q := service.NewQueue(s)
	var recs []order.Record
	if activeOnly {
		recs, err = q.ActiveOrders(ctx)
	} else {
		recs, err = q.All(ctx)
	}
	if err != nil {
		return err
	}

	if activeOnly && len(recs) == 0 {
		fmt.Fprintln(out, "No orders in the queue.")
		return nil
	}
	return renderOrders(out, recs)
}

func cmdTransition(ctx context.Context, cfg *config.Config, args []string, out io.Writer, to order.Status) error {
	if len(args) != 1 {
		return errUsage
	}
	s, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	q := service.NewQueue(s)
	var rec order.Record
	if to == order.StatusServed {
		rec, err = q.MarkServed(ctx, strings.TrimSpace(args[0]))
	} else {
		rec, err = q.MarkCancelled(ctx, strings.TrimSpace(args[0]))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Order %s marked %s.\n", rec.ID, rec.Status)
	return nil
}

func renderOrders(out io.Writer, recs []order.Record) error {
	table := tablewriter.NewWriter(out)
	table.Header("Order No", "Date", "Time", "Day", "Food Items", "Total", "Status")
	for _, r := range recs {
		if err := table.Append(store.EncodeRow(r)); err != nil {
			return err
		}
	}
	return table.Render()
}

// parseSelections reads Item=Qty arguments. The quantity follows the last
// '=' so item names may contain one.
func parseSelections(args []string) ([]order.Selection, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("place needs at least one Item=Qty\n%w", errUsage)
	}
	out := make([]order.Selection, 0, len(args))
	for _, a := range args {
		i := strings.LastIndex(a, "=")
		if i <= 0 {
			return nil, fmt.Errorf("bad selection %q, want Item=Qty\n%w", a, errUsage)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(a[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("bad quantity in %q\n%w", a, errUsage)
		}
		out = append(out, order.Selection{Item: strings.TrimSpace(a[:i]), Quantity: qty})
	}
	return out, nil
}

// describe turns an error into the line shown to the operator.
func describe(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, menu.ErrCatalogUnavailable):
		return fmt.Sprintf("Menu unavailable, try again: %v", err)
	case errors.Is(err, menu.ErrUnknownItem):
		return fmt.Sprintf("Not on the menu: %v", err)
	case errors.Is(err, order.ErrEmptyOrder):
		return "Nothing to order: every quantity is zero."
	case errors.Is(err, store.ErrNotFound):
		return fmt.Sprintf("No such order: %v", err)
	case errors.Is(err, order.ErrInvalidTransition):
		return fmt.Sprintf("Order already closed: %v", err)
	case errors.Is(err, order.ErrUnrecognizedStatus), errors.Is(err, store.ErrCorruptRow):
		return fmt.Sprintf("Order store has a corrupted row, fix it by hand: %v", err)
	case store.IsRetryable(err):
		return fmt.Sprintf("Order store unavailable, try again: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
