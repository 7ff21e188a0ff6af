package users

import (
	"context"
	"testing"

	"github.com/streamcast/streamcast/internal/domain/tip"
	"github.com/streamcast/streamcast/internal/storage/memory"
)

func TestService_EnsureIsIdempotent(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	first, err := svc.Ensure(ctx, "0xABC123", false)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	second, err := svc.Ensure(ctx, "0xabc123", true)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if first.Address != second.Address {
		t.Fatalf("addresses differ: %s vs %s", first.Address, second.Address)
	}
	if first.CreatedAt != second.CreatedAt {
		t.Fatal("second ensure must not recreate the profile")
	}
}

func TestService_FollowCreatesMissingProfiles(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	if _, err := svc.Follow(ctx, "0xFan", "0xStar"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	star, err := svc.Get(ctx, "0xstar")
	if err != nil {
		t.Fatalf("followee profile missing: %v", err)
	}
	if star.Followers != 1 {
		t.Fatalf("follower count: %d", star.Followers)
	}

	follows, err := svc.Follows(ctx, "0xfan")
	if err != nil {
		t.Fatalf("list follows: %v", err)
	}
	if len(follows) != 1 {
		t.Fatalf("expected 1 follow, got %d", len(follows))
	}

	if err := svc.Unfollow(ctx, "0xfan", "0xstar"); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	star, _ = svc.Get(ctx, "0xstar")
	if star.Followers != 0 {
		t.Fatalf("follower count after unfollow: %d", star.Followers)
	}
}

func TestService_LeaderboardOrdersByEarnings(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	// Earnings accrue through confirmed tips.
	for _, tc := range []struct {
		to     string
		amount float64
	}{
		{"0xsecond", 5},
		{"0xfirst", 9},
		{"0xthird", 1},
	} {
		created, err := store.CreateTip(ctx, tip.Transaction{
			FromAddress: "0xpatron", ToAddress: tc.to, Amount: tc.amount, TxHash: "0x" + tc.to,
		})
		if err != nil {
			t.Fatalf("create tip: %v", err)
		}
		if _, err := store.FinalizeTip(ctx, created.ID, tip.StatusConfirmed); err != nil {
			t.Fatalf("finalize tip: %v", err)
		}
	}

	board, err := svc.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board))
	}
	if board[0].Address != "0xfirst" || board[1].Address != "0xsecond" {
		t.Fatalf("wrong order: %s, %s", board[0].Address, board[1].Address)
	}
}
