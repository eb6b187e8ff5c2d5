package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/caffe-tetangga/pos-client/internal/config"
	"github.com/caffe-tetangga/pos-client/internal/session"
	"github.com/caffe-tetangga/pos-client/internal/status"
	"github.com/caffe-tetangga/pos-client/internal/stream"
	"github.com/caffe-tetangga/pos-client/internal/watch"
	"github.com/google/uuid"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: track <order-id>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	orderID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		log.Fatalf("invalid order id: %v", err)
	}

	cfg := config.Load()
	sess := session.NewStore()
	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, sess)

	fader := status.NewFader(func(s status.Status, p status.Projection) {
		fmt.Printf("\n%s  %s: %s\n", p.Icon, p.Label, p.Message)
	})
	defer fader.Dispose()

	w := watch.New(watch.Config[*api.Tracking]{
		Fetch: func(ctx context.Context) (*api.Tracking, error) {
			return client.TrackOrder(ctx, orderID)
		},
		OnUpdate: func(tr *api.Tracking) {
			render(tr)
			fader.Observe(tr.Order.Status)
		},
		OnError: func(err error) {
			log.Printf("ERROR: refresh tracking: %v", err)
		},
		// Public channel: no credential.
		Stream:       stream.Config{URL: client.OrderStreamURL(orderID)},
		FetchTimeout: cfg.RequestTimeout,
	})

	w.Start()
	defer w.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	fmt.Println("\nbye")
}

func render(tr *api.Tracking) {
	o := tr.Order
	fmt.Printf("\n=== Pesanan %s | Meja %d ===\n", o.OrderNumber, o.TableNumber)
	for _, it := range o.Items {
		fmt.Printf("  %dx %-24s %10s\n", it.Quantity, it.ProductName, it.Subtotal.StringFixed(0))
		if it.Notes != "" {
			fmt.Printf("      catatan: %s\n", it.Notes)
		}
	}
	fmt.Printf("  TOTAL: %s\n", o.TotalPrice.StringFixed(0))
	if o.EstimatedMinutes > 0 {
		remaining := status.RemainingMinutes(o.EstimatedMinutes, o.CreatedAt, time.Now())
		fmt.Printf("  perkiraan sisa waktu: %d menit\n", remaining)
	}
}
