package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/streamcast/streamcast/internal/domain/stream"
	"github.com/streamcast/streamcast/internal/domain/tip"
	"github.com/streamcast/streamcast/internal/domain/user"
	"github.com/streamcast/streamcast/internal/storage"
)

func TestStore_UserAddressNormalization(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateUser(ctx, user.User{Address: " 0xABCDEF0123 "})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Address != "0xabcdef0123" {
		t.Fatalf("address not normalized: %s", created.Address)
	}
	if created.Username != "Useref0123" {
		t.Fatalf("unexpected default username: %s", created.Username)
	}

	// Mixed-case lookup resolves the same record.
	got, err := store.GetUser(ctx, "0xAbCdEf0123")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Address != created.Address {
		t.Fatalf("lookup mismatch: %s vs %s", got.Address, created.Address)
	}
}

func TestStore_UpdateUserMergesOnlySetFields(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, user.User{Address: "0xaaa", Username: "alice", Avatar: "a.png"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	name := "alice2"
	updated, err := store.UpdateUser(ctx, "0xAAA", user.ProfileUpdate{Username: &name})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Username != "alice2" {
		t.Fatalf("username not updated: %s", updated.Username)
	}
	if updated.Avatar != "a.png" {
		t.Fatalf("avatar should be untouched: %s", updated.Avatar)
	}

	if _, err := store.UpdateUser(ctx, "0xmissing", user.ProfileUpdate{Username: &name}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListStreamsLiveOnly(t *testing.T) {
	store := New()
	ctx := context.Background()

	live, err := store.CreateStream(ctx, stream.Stream{Title: "live", CreatorAddress: "0x1", IsLive: true})
	if err != nil {
		t.Fatalf("create stream: %v", err)
	}
	ended, err := store.CreateStream(ctx, stream.Stream{Title: "ended", CreatorAddress: "0x2", IsLive: true})
	if err != nil {
		t.Fatalf("create stream: %v", err)
	}

	offline := false
	if _, err := store.UpdateStream(ctx, ended.ID, stream.Update{IsLive: &offline}); err != nil {
		t.Fatalf("update stream: %v", err)
	}

	list, err := store.ListStreams(ctx, true)
	if err != nil {
		t.Fatalf("list streams: %v", err)
	}
	if len(list) != 1 || list[0].ID != live.ID {
		t.Fatalf("expected only the live stream, got %d entries", len(list))
	}

	all, err := store.ListStreams(ctx, false)
	if err != nil {
		t.Fatalf("list all streams: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both streams, got %d", len(all))
	}
}

func TestStore_DeleteStreamMissing(t *testing.T) {
	store := New()
	if err := store.DeleteStream(context.Background(), "stream-missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FinalizeTipCreditsOnce(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateTip(ctx, tip.Transaction{
		FromAddress: "0xSender",
		ToAddress:   "0xReceiver",
		Amount:      2.5,
		TxHash:      "0xhash",
	})
	if err != nil {
		t.Fatalf("create tip: %v", err)
	}
	if created.Status != tip.StatusPending {
		t.Fatalf("new tip must be pending, got %s", created.Status)
	}

	finalized, err := store.FinalizeTip(ctx, created.ID, tip.StatusConfirmed)
	if err != nil {
		t.Fatalf("finalize tip: %v", err)
	}
	if finalized.Status != tip.StatusConfirmed {
		t.Fatalf("unexpected status: %s", finalized.Status)
	}

	recipient, err := store.GetUser(ctx, "0xreceiver")
	if err != nil {
		t.Fatalf("recipient should exist after credit: %v", err)
	}
	if recipient.TotalEarned != 2.5 {
		t.Fatalf("earnings not credited: %v", recipient.TotalEarned)
	}

	// A second finalize reports the conflict and leaves earnings alone.
	if _, err := store.FinalizeTip(ctx, created.ID, tip.StatusConfirmed); !errors.Is(err, storage.ErrTipFinalized) {
		t.Fatalf("expected ErrTipFinalized, got %v", err)
	}
	recipient, _ = store.GetUser(ctx, "0xreceiver")
	if recipient.TotalEarned != 2.5 {
		t.Fatalf("earnings double-credited: %v", recipient.TotalEarned)
	}
}

func TestStore_FinalizeTipRejectsNonTerminal(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateTip(ctx, tip.Transaction{FromAddress: "0x1", ToAddress: "0x2", Amount: 1, TxHash: "0xh"})
	if err != nil {
		t.Fatalf("create tip: %v", err)
	}
	if _, err := store.FinalizeTip(ctx, created.ID, tip.StatusPending); err == nil {
		t.Fatal("expected error for non-terminal status")
	}
	if _, err := store.FinalizeTip(ctx, "tip-missing", tip.StatusFailed); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FailedTipDoesNotCredit(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateTip(ctx, tip.Transaction{FromAddress: "0x1", ToAddress: "0x2", Amount: 5, TxHash: "0xh"})
	if err != nil {
		t.Fatalf("create tip: %v", err)
	}
	if _, err := store.FinalizeTip(ctx, created.ID, tip.StatusFailed); err != nil {
		t.Fatalf("finalize tip: %v", err)
	}
	if _, err := store.GetUser(ctx, "0x2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("failed tip must not create or credit the recipient, got %v", err)
	}
}

func TestStore_ListTipsByAddressMatchesBothSides(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateTip(ctx, tip.Transaction{FromAddress: "0xA", ToAddress: "0xB", Amount: 1, TxHash: "h1"}); err != nil {
		t.Fatalf("create tip: %v", err)
	}
	if _, err := store.CreateTip(ctx, tip.Transaction{FromAddress: "0xB", ToAddress: "0xC", Amount: 2, TxHash: "h2"}); err != nil {
		t.Fatalf("create tip: %v", err)
	}
	if _, err := store.CreateTip(ctx, tip.Transaction{FromAddress: "0xC", ToAddress: "0xD", Amount: 3, TxHash: "h3"}); err != nil {
		t.Fatalf("create tip: %v", err)
	}

	tipsForB, err := store.ListTipsByAddress(ctx, "0xb")
	if err != nil {
		t.Fatalf("list tips: %v", err)
	}
	if len(tipsForB) != 2 {
		t.Fatalf("expected 2 tips for 0xb, got %d", len(tipsForB))
	}
}

func TestStore_FollowCountsAndDuplicates(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, user.User{Address: "0xfan"}); err != nil {
		t.Fatalf("create follower: %v", err)
	}
	if _, err := store.CreateUser(ctx, user.User{Address: "0xstar"}); err != nil {
		t.Fatalf("create followee: %v", err)
	}

	if _, err := store.CreateFollow(ctx, "0xFan", "0xStar"); err != nil {
		t.Fatalf("create follow: %v", err)
	}
	if _, err := store.CreateFollow(ctx, "0xfan", "0xstar"); !errors.Is(err, storage.ErrFollowExists) {
		t.Fatalf("expected ErrFollowExists, got %v", err)
	}

	star, _ := store.GetUser(ctx, "0xstar")
	if star.Followers != 1 {
		t.Fatalf("follower count not incremented: %d", star.Followers)
	}
	fan, _ := store.GetUser(ctx, "0xfan")
	if fan.Following != 1 {
		t.Fatalf("following count not incremented: %d", fan.Following)
	}

	if err := store.DeleteFollow(ctx, "0xfan", "0xstar"); err != nil {
		t.Fatalf("delete follow: %v", err)
	}
	star, _ = store.GetUser(ctx, "0xstar")
	if star.Followers != 0 {
		t.Fatalf("follower count not decremented: %d", star.Followers)
	}
	if err := store.DeleteFollow(ctx, "0xfan", "0xstar"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
