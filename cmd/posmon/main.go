package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/caffe-tetangga/pos-client/internal/config"
	"github.com/caffe-tetangga/pos-client/internal/session"
	"github.com/caffe-tetangga/pos-client/internal/status"
	"github.com/caffe-tetangga/pos-client/internal/stream"
	"github.com/caffe-tetangga/pos-client/internal/watch"
	"github.com/google/uuid"
)

// posmon is the staff monitor: a live production queue for the kitchen or a
// live order list for the cashier, both fed by SSE with a polling fallback.
func main() {
	mode := flag.String("mode", "production", "production or cashier")
	username := flag.String("user", "", "staff username")
	password := flag.String("pass", "", "staff password")
	flag.Parse()

	if *mode != "production" && *mode != "cashier" {
		log.Fatalf("unknown mode %q", *mode)
	}
	if *username == "" || *password == "" {
		log.Fatal("both -user and -pass are required")
	}

	cfg := config.Load()
	sess := session.NewStore()
	sess.OnInvalidate(func() {
		log.Println("session expired, please restart and log in again")
		os.Exit(1)
	})
	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, sess)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	who, err := client.Login(ctx, *username, *password)
	cancel()
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	log.Printf("logged in as %s (%s)", who.Username, who.Role)

	m := &monitor{client: client, mode: *mode}

	fetch := client.ProductionQueue
	streamURL := client.ProductionStreamURL()
	if *mode == "cashier" {
		fetch = client.ListOrders
		streamURL = client.CashierStreamURL()
	}

	w := watch.New(watch.Config[*api.Paginated[api.Order]]{
		Fetch: func(ctx context.Context) (*api.Paginated[api.Order], error) {
			return fetch(ctx, "", 1, 100)
		},
		OnUpdate: m.render,
		OnError: func(err error) {
			log.Printf("ERROR: refresh queue: %v", err)
		},
		Stream:       stream.Config{URL: streamURL, Tokens: sess},
		PollInterval: cfg.PollInterval,
		FetchTimeout: cfg.RequestTimeout,
	})
	m.watcher = w

	w.Start()
	defer w.Stop()

	m.repl(os.Stdin)
}

type monitor struct {
	client  *api.Client
	mode    string
	watcher *watch.Watcher[*api.Paginated[api.Order]]
}

func (m *monitor) render(page *api.Paginated[api.Order]) {
	fmt.Printf("\n--- %s (%d pesanan) ---\n", strings.ToUpper(m.mode), page.Total)
	for i, o := range page.Items {
		p := status.Project(o.Status)
		line := fmt.Sprintf("[%2d] %s  meja %-2d  %s %-10s  %s",
			i+1, o.OrderNumber, o.TableNumber, p.Icon, p.Label, o.TotalPrice.StringFixed(0))
		if status.Status(o.Status) == status.Diproses && o.EstimatedMinutes > 0 {
			remaining := status.RemainingMinutes(o.EstimatedMinutes, o.CreatedAt, time.Now())
			line += fmt.Sprintf("  sisa %d menit", remaining)
		}
		fmt.Println(line)
	}
	if m.mode == "production" {
		fmt.Println("commands: s <n> <status> [menit] | r (refresh) | q (quit)")
	} else {
		fmt.Println("commands: p <n> (bayar) | c <n> (batal) | r (refresh) | q (quit)")
	}
}

func (m *monitor) repl(in *os.File) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "q":
			return
		case "r":
			m.watcher.Refresh()
		case "s":
			if m.mode == "production" {
				m.updateStatus(fields[1:])
			}
		case "p":
			if m.mode == "cashier" {
				m.cashierAction(fields[1:], m.client.PayOrder, true)
			}
		case "c":
			if m.mode == "cashier" {
				m.cashierAction(fields[1:], m.client.CancelOrder, false)
			}
		}
	}
}

// orderAt maps a display index back to the order in the latest snapshot.
func (m *monitor) orderAt(arg string) (*api.Order, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		fmt.Println("pilih nomor baris yang valid")
		return nil, false
	}
	page, ok := m.watcher.Snapshot()
	if !ok || n > len(page.Items) {
		fmt.Println("baris tidak ditemukan")
		return nil, false
	}
	return &page.Items[n-1], true
}

func (m *monitor) updateStatus(args []string) {
	if len(args) < 2 {
		fmt.Println("pakai: s <n> <status> [menit]")
		return
	}
	o, ok := m.orderAt(args[0])
	if !ok {
		return
	}

	requested := status.Status(strings.ToUpper(args[1]))
	allowed := false
	for _, next := range status.Next(status.Status(o.Status)) {
		if next == requested {
			allowed = true
			break
		}
	}
	if !allowed {
		fmt.Printf("dari %s hanya bisa ke: %v\n", o.Status, status.Next(status.Status(o.Status)))
		return
	}

	req := api.UpdateProductionRequest{Status: string(requested)}
	if requested == status.Diproses {
		req.EstimatedMinutes = status.DefaultEstimatedMinutes
		if len(args) >= 3 {
			if minutes, err := strconv.Atoi(args[2]); err == nil && minutes > 0 {
				req.EstimatedMinutes = minutes
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
	defer cancel()
	if _, err := m.client.UpdateProduction(ctx, o.ID, req); err != nil {
		fmt.Printf("gagal: %v\n", err)
		return
	}
	m.watcher.Refresh()
}

func (m *monitor) cashierAction(args []string, action func(context.Context, uuid.UUID) (*api.Order, error), printReceipt bool) {
	if len(args) < 1 {
		fmt.Println("pakai: p <n> / c <n>")
		return
	}
	o, ok := m.orderAt(args[0])
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
	defer cancel()
	if _, err := action(ctx, o.ID); err != nil {
		fmt.Printf("gagal: %v\n", err)
		return
	}

	if printReceipt {
		if rec, err := m.client.Receipt(ctx, o.ID); err == nil {
			fmt.Print(renderReceipt(rec))
		} else {
			log.Printf("ERROR: fetch receipt: %v", err)
		}
	}
	m.watcher.Refresh()
}
