package engine

import (
	"testing"
	"time"
)

// startAuctionAt lands p1 on tile 3 and declines, which opens the auction.
func startAuctionAt3(t *testing.T, f *fixture) {
	t.Helper()
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Apply("p1", Command{Action: ActionDecline}); err != nil {
		t.Fatal(err)
	}
	if f.s.Auction == nil || !f.s.Auction.Active {
		t.Fatal("decline with auto-auction must open an auction")
	}
}

func TestAutoAuctionOnUnaffordableLanding(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	f.player(t, "p1").Balance = 50
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	a := f.s.Auction
	if a == nil || !a.Active || a.TileId != 3 {
		t.Fatal("unaffordable landing must start an auction, no buy prompt")
	}
	if !a.Eligible["p1"] || !a.Eligible["p2"] {
		t.Fatal("all non-bankrupt parties are eligible")
	}
	if !f.sched.pending("room1.auction") {
		t.Fatal("the countdown must be scheduled")
	}
}

func TestBidRules(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	startAuctionAt3(t, f)

	tests := []struct {
		name   string
		actor  string
		amount int
		want   error
	}{
		{"zero bid", "p2", 0, ErrBidTooLow},
		{"over budget", "p2", 2000, ErrInsufficientFunds},
		{"opening bid", "p2", 50, nil},
		{"equal bid", "p1", 50, ErrBidTooLow},
		{"raise", "p1", 60, nil},
		{"whole balance", "p2", 1500, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := f.s.Apply(tc.actor, Command{Action: ActionPlaceBid, Amount: tc.amount})
			if err != tc.want {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
	if f.s.Auction.Bid != 1500 || f.s.Auction.LeaderId != "p2" {
		t.Fatalf("leader %s at %d, want p2 at 1500", f.s.Auction.LeaderId, f.s.Auction.Bid)
	}
}

func TestBidExtendsDeadline(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	startAuctionAt3(t, f)
	opening := f.s.Auction.Deadline
	f.clock.advance(12 * time.Second) // deep into the 15s countdown
	if err := f.s.Apply("p2", Command{Action: ActionPlaceBid, Amount: 10}); err != nil {
		t.Fatal(err)
	}
	if !f.s.Auction.Deadline.After(opening) {
		t.Fatal("a bid must push the deadline out")
	}
	if got := f.s.Auction.Deadline.Sub(f.clock.Now()); got != auctionExtension {
		t.Fatalf("extension window = %s, want %s", got, auctionExtension)
	}
}

func TestCompleteWithNoBids(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	startAuctionAt3(t, f)
	if !f.sched.fire("room1.auction") {
		t.Fatal("deadline timer should be pending")
	}
	if f.s.Auction != nil {
		t.Fatal("auction must clear")
	}
	if f.s.Tiles[3].OwnerId != "" {
		t.Fatal("no sale: tile stays unowned")
	}
	// the explicit command arriving after the timer is a no-op
	if err := f.s.Apply("p2", Command{Action: ActionCompleteAuction}); err != nil {
		t.Fatalf("idempotent completion, got %v", err)
	}
}

func TestCompleteWithLeader(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	startAuctionAt3(t, f)
	if err := f.s.Apply("p2", Command{Action: ActionPlaceBid, Amount: 75}); err != nil {
		t.Fatal(err)
	}
	f.sched.fire("room1.auction")
	p2 := f.player(t, "p2")
	if f.s.Tiles[3].OwnerId != "p2" || !p2.Properties[3] {
		t.Fatal("winner must take the tile")
	}
	if p2.Balance != 1500-75 {
		t.Fatalf("balance = %d, want exactly the winning bid debited", p2.Balance)
	}
}

func TestSingleAuctionSlot(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	startAuctionAt3(t, f)
	if err := f.s.startAuction(f.s.Tiles[6]); err != ErrAuctionRunning {
		t.Fatalf("got %v, want ErrAuctionRunning", err)
	}
}

func TestBuyBlockedDuringAuction(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	startAuctionAt3(t, f)
	if err := f.s.Apply("p1", Command{Action: ActionBuy}); err != ErrAuctionRunning {
		t.Fatalf("got %v, want ErrAuctionRunning", err)
	}
}
