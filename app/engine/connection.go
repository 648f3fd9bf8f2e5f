package engine

import (
	"time"

	log "github.com/sirupsen/logrus"
)

const sweepInterval = 30 * time.Second

// The connection supervisor tolerates dropped transports: an absent party
// is skipped, not eliminated, until the eviction timeout runs out.

// MarkAbsent flags a party as disconnected. If it is their turn, play is
// force-advanced so the room never waits on a dead socket.
func (s *Session) MarkAbsent(playerId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.player(playerId)
	if p == nil {
		return ErrUnknownPlayer
	}
	if p.Disconnected {
		return nil
	}
	p.Disconnected = true
	p.DisconnectedAt = s.clock.Now()
	s.logf("%s disconnected", p.Name)
	log.WithFields(log.Fields{"room": s.Id, "player": p.Name}).Info("player disconnected")
	if s.Started && !s.Ended {
		if cur := s.current(); cur != nil && cur.Id == p.Id {
			s.advanceTurn()
		}
	}
	s.sched.Schedule(s.Id+".evict", sweepInterval, s.Sweep)
	s.publish()
	return nil
}

// Restore rebinds an absent party to its new transport identity and clears
// the absence. Only valid while the party is marked absent.
func (s *Session) Restore(oldId, newId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.player(oldId)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.Disconnected {
		return ErrNotDisconnected
	}
	s.rebindId(oldId, newId)
	p.Id = newId
	p.Disconnected = false
	p.DisconnectedAt = time.Time{}
	s.logf("%s reconnected", p.Name)
	if s.Paused && s.Started && !s.Ended {
		s.advanceTurn()
	}
	s.publish()
	return nil
}

// rebindId rewrites every reference to a party id. Tile ownership, trades,
// the auction and the winner slot all point at transport-scoped ids.
func (s *Session) rebindId(oldId, newId string) {
	for _, t := range s.Tiles {
		if t.OwnerId == oldId {
			t.OwnerId = newId
		}
	}
	for _, trade := range s.Trades {
		if trade.SenderId == oldId {
			trade.SenderId = newId
		}
		if trade.ReceiverId == oldId {
			trade.ReceiverId = newId
		}
	}
	if s.Auction != nil {
		if s.Auction.LeaderId == oldId {
			s.Auction.LeaderId = newId
		}
		if s.Auction.Eligible[oldId] {
			delete(s.Auction.Eligible, oldId)
			s.Auction.Eligible[newId] = true
		}
	}
	if s.WinnerId == oldId {
		s.WinnerId = newId
	}
}

// Leave removes a party immediately (voluntary exit).
func (s *Session) Leave(playerId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.player(playerId)
	if p == nil {
		return ErrUnknownPlayer
	}
	s.removePlayer(p)
	if len(s.Players) > 0 {
		s.publish()
	}
	return nil
}

// Sweep is the periodic eviction pass: any party absent longer than the
// configured timeout is removed outright, host handed off if needed. An
// empty pass is a no-op; it reschedules itself while absences remain.
func (s *Session) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	var expired []*Player
	waiting := false
	for _, p := range s.Players {
		if !p.Disconnected {
			continue
		}
		if now.Sub(p.DisconnectedAt) >= s.Config.EvictAfter {
			expired = append(expired, p)
		} else {
			waiting = true
		}
	}
	for _, p := range expired {
		s.logf("%s evicted after %s away", p.Name, s.Config.EvictAfter)
		log.WithFields(log.Fields{"room": s.Id, "player": p.Name}).Info("player evicted")
		s.removePlayer(p)
	}
	if waiting {
		s.sched.Schedule(s.Id+".evict", sweepInterval, s.Sweep)
	}
	if len(expired) > 0 && len(s.Players) > 0 {
		s.publish()
	}
}

// removePlayer runs full roster removal: assets return to the open market,
// pending trades involving the party die, the cursor and host flag stay
// coherent. Distinct from bankruptcy, which leaves a spectator behind.
func (s *Session) removePlayer(p *Player) {
	if s.Started && !s.Ended {
		if cur := s.current(); cur != nil && cur.Id == p.Id {
			s.advanceTurn()
		}
	}
	for id := range p.Properties {
		t := s.Tiles[id]
		t.OwnerId = ""
		t.Buildings = 0
		t.Mortgaged = false
	}
	for _, trade := range s.Trades {
		if trade.Status == TradePending && (trade.SenderId == p.Id || trade.ReceiverId == p.Id) {
			trade.Status = TradeCancelled
		}
	}
	if s.Auction != nil {
		delete(s.Auction.Eligible, p.Id)
		if s.Auction.LeaderId == p.Id {
			s.Auction.LeaderId = ""
			s.Auction.Bid = 0
		}
	}
	idx := -1
	for i, other := range s.Players {
		if other.Id == p.Id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
	if idx < s.Turn {
		s.Turn--
	}
	if s.Turn >= len(s.Players) {
		s.Turn = 0
	}
	delete(s.agents, p.Id)
	if p.Host && len(s.Players) > 0 {
		s.Players[0].Host = true
		s.logf("%s is the new host", s.Players[0].Name)
	}
	s.logf("%s left the room", p.Name)
	if len(s.Players) == 0 {
		s.Ended = true
		s.sched.Cancel(s.Id + ".auction")
		s.sched.Cancel(s.Id + ".evict")
		s.sched.Cancel(s.Id + ".agent")
		if s.onEmpty != nil {
			s.onEmpty(s.Id)
		}
		return
	}
	if s.Started {
		s.checkGameOver()
	}
}
