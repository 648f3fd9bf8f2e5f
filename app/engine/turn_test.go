package engine

import (
	"strings"
	"testing"
)

func TestRollMovesAndLands(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	p1 := f.player(t, "p1")
	if p1.Position != 3 {
		t.Fatalf("position = %d, want 3", p1.Position)
	}
	if f.s.MustRoll || f.s.CanRollAgain {
		t.Fatal("no further roll should be owed after a plain roll")
	}
	if p1.Stats.TileVisits[3] != 1 {
		t.Fatal("visit histogram not updated")
	}
}

func TestRollRejections(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	tests := []struct {
		name  string
		actor string
		prep  func()
		want  error
	}{
		{"wrong turn", "p2", func() {}, ErrNotYourTurn},
		{"in debt", "p1", func() { f.player(t, "p1").Balance = -10 }, ErrInDebt},
		{"already rolled", "p1", func() {
			f.player(t, "p1").Balance = 1500
			f.s.MustRoll = false
			f.s.CanRollAgain = false
		}, ErrRollNotAllowed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.prep()
			if err := f.s.Apply(tc.actor, Command{Action: ActionRoll}); err != tc.want {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestThreeDoublesJail(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	f.dice.push([2]int{2, 2}, [2]int{3, 3}, [2]int{1, 1})
	for i := 0; i < 2; i++ {
		if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
			t.Fatal(err)
		}
		if !f.s.CanRollAgain {
			t.Fatalf("roll %d: doubles should earn a reroll", i+1)
		}
	}
	before := f.player(t, "p1").Position
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	p1 := f.player(t, "p1")
	if !p1.InJail {
		t.Fatal("third doubles must jail the roller")
	}
	if p1.Position == before+2 {
		t.Fatal("third doubles must not move the roller")
	}
	if cur := f.s.Snapshot().CurrentId; cur != "p2" {
		t.Fatalf("turn should have passed to p2, got %s", cur)
	}
	if f.s.DoublesStreak != 0 {
		t.Fatal("doubles streak must reset")
	}
}

func TestDebtGatesEndTurn(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	f.s.MustRoll = false
	p1.Balance = -100
	if err := f.s.Apply("p1", Command{Action: ActionEndTurn}); err != ErrInDebt {
		t.Fatalf("got %v, want ErrInDebt", err)
	}
	p1.Balance = 0
	if err := f.s.Apply("p1", Command{Action: ActionEndTurn}); err != nil {
		t.Fatal(err)
	}
	if f.s.Snapshot().CurrentId != "p2" {
		t.Fatal("turn should advance once the debt is cleared")
	}
}

func TestPassBonusOnWraparound(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	p1.Position = 38
	f.dice.push([2]int{2, 3})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if p1.Position != 3 {
		t.Fatalf("position = %d, want 3", p1.Position)
	}
	if p1.Balance != 1700 {
		t.Fatalf("balance = %d, want 1700 (pass bonus)", p1.Balance)
	}
}

func TestJailDoublesReleaseAndMoveOnce(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	p1.InJail = true
	p1.Position = 10
	f.dice.push([2]int{3, 3})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if p1.InJail {
		t.Fatal("doubles must free the party")
	}
	if p1.Position != 16 {
		t.Fatalf("position = %d, want 16", p1.Position)
	}
	if f.s.CanRollAgain {
		t.Fatal("jail doubles never earn a reroll")
	}
	if f.s.Snapshot().CurrentId != "p1" {
		t.Fatal("turn continues after a jail release")
	}
}

func TestJailFailedAttemptEndsTurn(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	p1.InJail = true
	p1.Position = 10
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if !p1.InJail || p1.JailTurns != 1 {
		t.Fatalf("jailed=%v turns=%d, want jailed with 1 failed attempt", p1.InJail, p1.JailTurns)
	}
	if f.s.Snapshot().CurrentId != "p2" {
		t.Fatal("failed jail roll must end the turn")
	}
}

func TestJailThirdFailureForcesFine(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	p1.InJail = true
	p1.Position = 10
	p1.JailTurns = 2
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if p1.InJail {
		t.Fatal("third failure must force release while solvent")
	}
	if p1.Balance != 1500-f.s.Config.JailFine {
		t.Fatalf("balance = %d, fine not debited", p1.Balance)
	}
	if p1.Position != 13 {
		t.Fatalf("position = %d, want 13", p1.Position)
	}
}

func TestJailThirdFailureInsolventStays(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	p1.InJail = true
	p1.Position = 10
	p1.JailTurns = 2
	p1.Balance = 20
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if !p1.InJail {
		t.Fatal("an insolvent party stays in jail")
	}
	if p1.Balance != 20 {
		t.Fatal("no partial fine may be taken")
	}
	if f.s.Snapshot().CurrentId != "p2" {
		t.Fatal("turn must still end")
	}
}

func TestFlatTaxFeedsVacationFund(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	f.dice.push([2]int{1, 3})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	p1 := f.player(t, "p1")
	if p1.Balance != 1300 {
		t.Fatalf("balance = %d, want 1300", p1.Balance)
	}
	if f.s.VacationFund != 200 {
		t.Fatalf("vacation fund = %d, want 200", f.s.VacationFund)
	}
}

func TestProgressiveTaxBrackets(t *testing.T) {
	tests := []struct {
		name    string
		balance int
		want    int
	}{
		{"low bracket", 900, 90},
		{"low boundary", 999, 99},
		{"mid boundary", 1000, 150},
		{"mid bracket", 1500, 225},
		{"top boundary", 2000, 400},
		{"top bracket", 2500, 500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "alice", "bob")
			f.s.Config.ProgressiveTax = true
			p1 := f.player(t, "p1")
			p1.Balance = tc.balance
			f.dice.push([2]int{1, 3})
			if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
				t.Fatal(err)
			}
			if p1.Balance != tc.balance-tc.want {
				t.Fatalf("balance = %d, want %d taxed off %d", p1.Balance, tc.want, tc.balance)
			}
			if f.s.VacationFund != tc.want {
				t.Fatalf("vacation fund = %d, want %d", f.s.VacationFund, tc.want)
			}
		})
	}
}

func TestPayJailFineThenRoll(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	p1.InJail = true
	p1.Position = 10
	if err := f.s.Apply("p1", Command{Action: ActionPayJailFine}); err != nil {
		t.Fatal(err)
	}
	if p1.InJail {
		t.Fatal("the fine must buy release")
	}
	if p1.Balance != 1500-f.s.Config.JailFine {
		t.Fatalf("balance = %d, fine not debited", p1.Balance)
	}
	if !f.s.MustRoll {
		t.Fatal("the roll is still owed after paying")
	}
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if p1.Position != 13 {
		t.Fatalf("position = %d, want 13", p1.Position)
	}
}

func TestPayJailFineRejections(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	if err := f.s.Apply("p1", Command{Action: ActionPayJailFine}); err != ErrNotJailed {
		t.Fatalf("got %v, want ErrNotJailed", err)
	}
	p1.InJail = true
	p1.Position = 10
	p1.Balance = 10
	if err := f.s.Apply("p1", Command{Action: ActionPayJailFine}); err != ErrInsufficientFunds {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
}

func TestUseJailCard(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	p1.InJail = true
	p1.Position = 10
	if err := f.s.Apply("p1", Command{Action: ActionUseJailCard}); err != ErrNoJailCard {
		t.Fatalf("got %v, want ErrNoJailCard", err)
	}
	p1.JailCards = 1
	if err := f.s.Apply("p1", Command{Action: ActionUseJailCard}); err != nil {
		t.Fatal(err)
	}
	if p1.InJail || p1.JailCards != 0 {
		t.Fatalf("jailed=%v cards=%d, want released with the card spent", p1.InJail, p1.JailCards)
	}
	if p1.Balance != 1500 {
		t.Fatal("the card costs nothing")
	}
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if p1.Position != 13 {
		t.Fatalf("position = %d, want 13", p1.Position)
	}
}

func TestVacationPayoutAndSkip(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	p1 := f.player(t, "p1")
	f.s.VacationFund = 300
	p1.Position = 15
	f.dice.push([2]int{2, 3})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if p1.Balance != 1800 {
		t.Fatalf("balance = %d, want 1800", p1.Balance)
	}
	if f.s.VacationFund != 0 {
		t.Fatal("fund must drain on payout")
	}
	if p1.VacationSkips != 1 {
		t.Fatalf("vacation skips = %d, want 1", p1.VacationSkips)
	}
	if err := f.s.Apply("p1", Command{Action: ActionEndTurn}); err != nil {
		t.Fatal(err)
	}
	// p2 plays a turn; p1's next turn is skipped
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p2", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Apply("p2", Command{Action: ActionEndTurn}); err != nil {
		t.Fatal(err)
	}
	if cur := f.s.Snapshot().CurrentId; cur != "p2" {
		t.Fatalf("p1 should be skipped for vacation, current = %s", cur)
	}
	if p1.VacationSkips != 0 {
		t.Fatal("the skip must be consumed")
	}
}

func TestDisconnectedPartyIsSkipped(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	if err := f.s.MarkAbsent("p2"); err != nil {
		t.Fatal(err)
	}
	f.dice.push([2]int{1, 2})
	if err := f.s.Apply("p1", Command{Action: ActionRoll}); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Apply("p1", Command{Action: ActionEndTurn}); err != nil {
		t.Fatal(err)
	}
	if cur := f.s.Snapshot().CurrentId; cur != "p3" {
		t.Fatalf("current = %s, want p3", cur)
	}
	found := false
	for _, entry := range f.s.Log {
		if strings.Contains(entry.Text, "skipping bob") {
			found = true
		}
	}
	if !found {
		t.Fatal("the skip must be logged")
	}
}

func TestNoEligiblePartyPauses(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	if err := f.s.MarkAbsent("p2"); err != nil {
		t.Fatal(err)
	}
	// p1 is current; marking it absent force-advances into a paused state
	if err := f.s.MarkAbsent("p1"); err != nil {
		t.Fatal(err)
	}
	if !f.s.Paused {
		t.Fatal("session must pause with no eligible party")
	}
	if err := f.s.Restore("p2", "p2b"); err != nil {
		t.Fatal(err)
	}
	if f.s.Paused {
		t.Fatal("restore must resume play")
	}
	if cur := f.s.Snapshot().CurrentId; cur != "p2b" {
		t.Fatalf("current = %s, want p2b", cur)
	}
}
