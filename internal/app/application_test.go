package app

import (
	"context"
	"testing"
	"time"

	"github.com/streamcast/streamcast/internal/config"
	"github.com/streamcast/streamcast/internal/domain/tip"
	tipsvc "github.com/streamcast/streamcast/internal/services/tips"
)

type staticChecker struct{ status tip.Status }

func (c staticChecker) TransactionStatus(context.Context, string) (tip.Status, error) {
	return c.status, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0 // ephemeral port for tests
	cfg.Monitor.InitialDelay = time.Millisecond
	cfg.Monitor.PollInterval = time.Millisecond
	return cfg
}

func TestApplication_StartSeedsAndStops(t *testing.T) {
	cfg := testConfig()
	application, err := New(cfg, Stores{}, staticChecker{status: tip.StatusPending}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	list, err := application.Streams.List(ctx)
	if err != nil {
		t.Fatalf("list streams: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 seeded streams, got %d", len(list))
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := application.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestApplication_SeedDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Seed.Enabled = false

	application, err := New(cfg, Stores{}, staticChecker{status: tip.StatusPending}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer application.Stop(ctx)

	list, err := application.Streams.List(ctx)
	if err != nil {
		t.Fatalf("list streams: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no streams, got %d", len(list))
	}
}

func TestApplication_TipFlowThroughMonitor(t *testing.T) {
	cfg := testConfig()
	cfg.Seed.Enabled = false

	application, err := New(cfg, Stores{}, staticChecker{status: tip.StatusConfirmed}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer application.Stop(ctx)

	created, err := application.Tips.Create(ctx, tipsvc.CreateParams{
		FromAddress: "0xViewer",
		ToAddress:   "0xStreamer",
		Amount:      0.5,
		TxHash:      "0xabc123",
	})
	if err != nil {
		t.Fatalf("create tip: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := application.Tips.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get tip: %v", err)
		}
		if got.Status == tip.StatusConfirmed {
			recipient, err := application.Users.Get(ctx, "0xstreamer")
			if err != nil {
				t.Fatalf("get recipient: %v", err)
			}
			if recipient.TotalEarned != 0.5 {
				t.Fatalf("earnings not credited: %v", recipient.TotalEarned)
			}
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("tip never confirmed")
}
