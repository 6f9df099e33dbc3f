package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/northmart/storefront/internal/config"
	"github.com/northmart/storefront/internal/monitor"
	"github.com/northmart/storefront/internal/order"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "ordermon").Logger()

	cfg, err := config.NewMonitorConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load monitor config")
	}

	creds := monitor.NewFileCredentialStore(cfg.CredentialsPath)
	client := monitor.NewClient(cfg.APIBaseURL, creds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ensureSession(ctx, client, creds); err != nil {
		log.Fatal().Err(err).Msg("Failed to open admin session")
	}

	mon := monitor.NewMonitor(client, creds, cfg.PollInterval, cfg.RedirectGrace)
	mon.OnUpdate = func() { render(mon) }
	mon.OnSessionExpired = func() {
		log.Error().Msg("Session expired. Please log in again.")
		cancel()
	}

	go mon.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go readCommands(ctx, cancel, mon)

	select {
	case <-sigChan:
		cancel()
	case <-ctx.Done():
	}
	log.Info().Msg("Monitor stopped")
}

// ensureSession reuses a stored token or logs in with credentials from
// the environment.
func ensureSession(ctx context.Context, client *monitor.Client, creds monitor.CredentialStore) error {
	token, err := creds.Token()
	if err != nil {
		return err
	}
	if token != "" {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("no stored token; set ADMIN_EMAIL and ADMIN_PASSWORD to log in")
	}

	return client.Login(ctx, email, password)
}

// readCommands drives operator actions from stdin:
//
//	verify <id>   mark a Pending Call order Verified
//	cancel <id>   cancel an order
//	refresh       re-fetch the live view now
//	quit          exit
func readCommands(ctx context.Context, cancel context.CancelFunc, mon *monitor.Monitor) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			cancel()
			return
		case "refresh":
			mon.RefreshActive(ctx)
		case "verify", "cancel":
			if len(fields) != 2 {
				fmt.Printf("usage: %s <order-id>\n", fields[0])
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Printf("invalid order id %q\n", fields[1])
				continue
			}
			newStatus := order.StatusVerified
			if fields[0] == "cancel" {
				newStatus = order.StatusCancelled
			}
			if err := mon.ChangeStatus(ctx, id, newStatus); err != nil {
				fmt.Printf("status change failed: %v\n", err)
			}
		default:
			fmt.Println("commands: verify <id>, cancel <id>, refresh, quit")
		}
	}
}

func render(mon *monitor.Monitor) {
	fmt.Printf("\n=== Dashboard @ %s ===\n", time.Now().Format("15:04:05"))

	summary := mon.Summary()
	fmt.Println("Recent orders:")
	switch summary.Phase {
	case monitor.PhaseLoading:
		fmt.Println("  loading...")
	case monitor.PhaseFailed:
		fmt.Printf("  error: %v\n", summary.Err)
	default:
		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tCUSTOMER\tSTATUS\tTOTAL\tCREATED")
		for _, s := range summary.Orders {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%.2f\t%s\n",
				s.ID, s.CustomerName, s.Status, s.TotalAmount, s.CreatedAt.Format("2006-01-02 15:04"))
		}
		tw.Flush()
	}

	active := mon.Active()
	fmt.Println("Live orders (Pending Call / Verified, today):")
	switch active.Phase {
	case monitor.PhaseLoading:
		fmt.Println("  loading...")
	case monitor.PhaseFailed:
		fmt.Printf("  error: %v\n", active.Err)
	default:
		if len(active.Orders) == 0 {
			fmt.Println("  no active orders for today")
			return
		}
		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tCUSTOMER\tPHONE\tSTATUS\tTOTAL\tCREATED")
		for _, o := range active.Orders {
			name := o.ShippingDetails.FullName
			if name == "" {
				name = o.CustomerName
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%.2f\t%s\n",
				o.ID, name, o.ShippingDetails.Phone, o.Status, o.TotalAmount, o.CreatedAt.Format("15:04"))
		}
		tw.Flush()
	}
}
