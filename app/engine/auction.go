package engine

import (
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	auctionCountdown = 15 * time.Second
	auctionExtension = 5 * time.Second // anti-snipe window after each bid
)

// Auction is the single timed competitive-bid process a session may run.
type Auction struct {
	TileId   int
	TileName string
	Bid      int
	LeaderId string
	Eligible map[string]bool
	Deadline time.Time
	Active   bool
}

// startAuction seeds the countdown and the eligible bidder set. The session
// holds at most one auction at a time.
func (s *Session) startAuction(t *Tile) error {
	if s.Auction != nil && s.Auction.Active {
		return ErrAuctionRunning
	}
	if t.OwnerId != "" {
		return ErrTileOwned
	}
	eligible := make(map[string]bool)
	for _, p := range s.Players {
		if !p.Bankrupt {
			eligible[p.Id] = true
		}
	}
	s.Auction = &Auction{
		TileId:   t.Id,
		TileName: t.Name,
		Eligible: eligible,
		Deadline: s.clock.Now().Add(auctionCountdown),
		Active:   true,
	}
	s.logf("auction started for %s", t.Name)
	s.sched.Schedule(s.Id+".auction", auctionCountdown, s.CompleteAuction)
	return nil
}

// placeBid must strictly exceed the current bid and fit the bidder's
// balance. Each bid resets the deadline to the extension window.
func (s *Session) placeBid(p *Player, amount int) error {
	a := s.Auction
	if a == nil || !a.Active {
		return ErrNoAuction
	}
	if !a.Eligible[p.Id] {
		return ErrNotEligible
	}
	if amount <= a.Bid {
		return ErrBidTooLow
	}
	if amount > p.Balance {
		return ErrInsufficientFunds
	}
	a.Bid = amount
	a.LeaderId = p.Id
	a.Deadline = s.clock.Now().Add(auctionExtension)
	s.sched.Schedule(s.Id+".auction", auctionExtension, s.CompleteAuction)
	s.logf("%s bids %d for %s", p.Name, amount, a.TileName)
	return nil
}

// completeAuction resolves the auction: debit the leader and hand over the
// tile, or no sale when nobody bid. Calling it with no auction running is a
// no-op, so the deadline timer and an explicit command cannot conflict.
func (s *Session) completeAuction() error {
	a := s.Auction
	if a == nil || !a.Active {
		return nil
	}
	a.Active = false
	s.sched.Cancel(s.Id + ".auction")
	t, err := s.tile(a.TileId)
	if err != nil {
		return err
	}
	winner := s.player(a.LeaderId)
	if a.LeaderId == "" || winner == nil || winner.Bankrupt {
		s.Auction = nil
		s.logf("auction for %s ends with no sale", a.TileName)
		return nil
	}
	winner.Balance -= a.Bid
	t.OwnerId = winner.Id
	winner.Properties[t.Id] = true
	s.Auction = nil
	s.logf("%s wins the auction for %s at %d", winner.Name, t.Name, a.Bid)
	log.WithFields(log.Fields{"room": s.Id, "tile": t.Name, "bid": a.Bid}).Info("auction completed")
	return nil
}
