package engine

import (
	log "github.com/sirupsen/logrus"
)

// Solvency rules: a negative balance is a legal state, not an error. It
// gates rolling and ending the turn until the party digs itself out by
// liquidating, trading, or declaring bankruptcy. Nothing here forces the
// declaration; resolution stays player-driven.

// declareBankruptcy liquidates the party. With a creditor named (the party
// whose charge forced the declaration) every tile transfers to them;
// otherwise everything returns to the open market.
func (s *Session) declareBankruptcy(p *Player, creditorId string) error {
	if !s.Started {
		return ErrNotStarted
	}
	if p.Bankrupt {
		return ErrAlreadyBankrupt
	}
	creditor := s.player(creditorId)
	if creditor != nil && (creditor.Id == p.Id || creditor.Bankrupt) {
		creditor = nil
	}
	for id := range p.Properties {
		t := s.Tiles[id]
		t.Buildings = 0
		if creditor != nil {
			s.transferTile(t, p, creditor)
		} else {
			t.OwnerId = ""
			t.Mortgaged = false
			delete(p.Properties, id)
		}
	}
	p.Balance = 0
	p.Bankrupt = true
	p.InJail = false
	p.VacationSkips = 0
	if s.Auction != nil && s.Auction.Active {
		delete(s.Auction.Eligible, p.Id)
		if s.Auction.LeaderId == p.Id {
			s.Auction.LeaderId = ""
			s.Auction.Bid = 0
		}
	}
	for _, trade := range s.Trades {
		if trade.Status == TradePending && (trade.SenderId == p.Id || trade.ReceiverId == p.Id) {
			trade.Status = TradeCancelled
		}
	}
	if creditor != nil {
		s.logf("%s goes bankrupt, assets go to %s", p.Name, creditor.Name)
	} else {
		s.logf("%s goes bankrupt", p.Name)
	}
	log.WithFields(log.Fields{"room": s.Id, "player": p.Name}).Info("bankruptcy declared")
	if cur := s.current(); cur != nil && cur.Id == p.Id && !s.Ended {
		s.advanceTurn()
	} else {
		s.checkGameOver()
	}
	return nil
}

// checkGameOver detects single-survivor victory and the all-humans-
// eliminated shutdown. Returns true once the session has ended.
func (s *Session) checkGameOver() bool {
	if s.Ended {
		return true
	}
	var alive []*Player
	humans := 0
	for _, p := range s.Players {
		if p.Bankrupt {
			continue
		}
		alive = append(alive, p)
		if !p.Bot {
			humans++
		}
	}
	switch {
	case len(alive) == 0:
		s.Ended = true
		s.logf("game over")
	case len(alive) == 1:
		s.Ended = true
		s.WinnerId = alive[0].Id
		s.logf("%s wins the game", alive[0].Name)
		log.WithFields(log.Fields{"room": s.Id, "winner": alive[0].Name}).Info("game won")
	case humans == 0:
		// only bots left standing: shut the room down
		s.Ended = true
		s.logf("all human players are out, game over")
	default:
		return false
	}
	return true
}
