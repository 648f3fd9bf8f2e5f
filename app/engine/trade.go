package engine

import (
	uuid "github.com/satori/go.uuid"
)

const (
	TradePending   = "pending"
	TradeAccepted  = "accepted"
	TradeRejected  = "rejected"
	TradeCancelled = "cancelled"
)

// TradeTerms are the four offer fields of a bilateral trade.
type TradeTerms struct {
	OfferMoney   int   `json:"offerMoney"`
	OfferTiles   []int `json:"offerTiles"`
	RequestMoney int   `json:"requestMoney"`
	RequestTiles []int `json:"requestTiles"`
}

func (t *TradeTerms) empty() bool {
	return t == nil || (t.OfferMoney == 0 && t.RequestMoney == 0 && len(t.OfferTiles) == 0 && len(t.RequestTiles) == 0)
}

// TradeOffer is a single negotiation record. A counter-offer mutates this
// record in place, swapping the sender and receiver roles; it never forks a
// new one.
type TradeOffer struct {
	Id         string
	SenderId   string
	ReceiverId string
	Terms      TradeTerms
	Status     string
}

// checkTerms verifies tile ownership on both legs against the live board.
// Run at proposal AND at acceptance, since board state drifts in between.
func (s *Session) checkTerms(sender, receiver *Player, terms *TradeTerms) error {
	if terms.empty() {
		return ErrEmptyTrade
	}
	if terms.OfferMoney < 0 || terms.RequestMoney < 0 {
		return ErrEmptyTrade
	}
	for _, id := range terms.OfferTiles {
		t, err := s.tile(id)
		if err != nil {
			return err
		}
		if t.OwnerId != sender.Id {
			return ErrTradeOwnership
		}
		if t.Buildings > 0 {
			return ErrTradeBuildings
		}
	}
	for _, id := range terms.RequestTiles {
		t, err := s.tile(id)
		if err != nil {
			return err
		}
		if t.OwnerId != receiver.Id {
			return ErrTradeOwnership
		}
		if t.Buildings > 0 {
			return ErrTradeBuildings
		}
	}
	return nil
}

func (s *Session) proposeTrade(sender *Player, receiverId string, terms *TradeTerms) error {
	if !s.Started {
		return ErrNotStarted
	}
	if s.Ended {
		return ErrEnded
	}
	receiver := s.player(receiverId)
	if receiver == nil || receiver.Id == sender.Id {
		return ErrUnknownPlayer
	}
	if sender.Bankrupt || receiver.Bankrupt {
		return ErrAlreadyBankrupt
	}
	if err := s.checkTerms(sender, receiver, terms); err != nil {
		return err
	}
	trade := &TradeOffer{
		Id:         uuid.NewV4().String(),
		SenderId:   sender.Id,
		ReceiverId: receiver.Id,
		Terms:      *terms,
		Status:     TradePending,
	}
	s.Trades[trade.Id] = trade
	s.logf("%s offers a trade to %s", sender.Name, receiver.Name)
	s.scheduleTradeEval(trade)
	return nil
}

// counterTrade inverts the roles on the same record and replaces the offer
// fields. A countered trade can be countered again indefinitely.
func (s *Session) counterTrade(actor *Player, tradeId string, terms *TradeTerms) error {
	if s.Ended {
		return ErrEnded
	}
	trade, ok := s.Trades[tradeId]
	if !ok {
		return ErrUnknownTrade
	}
	if trade.Status != TradePending {
		return ErrTradeNotPending
	}
	if actor.Id != trade.ReceiverId {
		return ErrNotTradeParty
	}
	other := s.player(trade.SenderId)
	if other == nil {
		return ErrUnknownPlayer
	}
	if err := s.checkTerms(actor, other, terms); err != nil {
		return err
	}
	trade.SenderId, trade.ReceiverId = actor.Id, other.Id
	trade.Terms = *terms
	trade.Status = TradePending
	s.logf("%s counters the trade", actor.Name)
	s.scheduleTradeEval(trade)
	return nil
}

// acceptTrade settles the swap atomically: both tile sets exchange owners
// and the two money legs net out.
func (s *Session) acceptTrade(actor *Player, tradeId string) error {
	if s.Ended {
		return ErrEnded
	}
	trade, ok := s.Trades[tradeId]
	if !ok {
		return ErrUnknownTrade
	}
	if trade.Status != TradePending {
		return ErrTradeNotPending
	}
	if actor.Id != trade.ReceiverId {
		return ErrNotTradeParty
	}
	sender := s.player(trade.SenderId)
	if sender == nil {
		return ErrUnknownPlayer
	}
	if sender.Bankrupt || actor.Bankrupt {
		return ErrAlreadyBankrupt
	}
	if err := s.checkTerms(sender, actor, &trade.Terms); err != nil {
		return err
	}
	if sender.Balance < trade.Terms.OfferMoney || actor.Balance < trade.Terms.RequestMoney {
		return ErrInsufficientFunds
	}
	for _, id := range trade.Terms.OfferTiles {
		s.transferTile(s.Tiles[id], sender, actor)
	}
	for _, id := range trade.Terms.RequestTiles {
		s.transferTile(s.Tiles[id], actor, sender)
	}
	sender.Balance += trade.Terms.RequestMoney - trade.Terms.OfferMoney
	actor.Balance += trade.Terms.OfferMoney - trade.Terms.RequestMoney
	trade.Status = TradeAccepted
	sender.Stats.Trades++
	actor.Stats.Trades++
	s.logf("%s accepts the trade from %s", actor.Name, sender.Name)
	return nil
}

func (s *Session) rejectTrade(actor *Player, tradeId string) error {
	trade, ok := s.Trades[tradeId]
	if !ok {
		return ErrUnknownTrade
	}
	if trade.Status != TradePending {
		return ErrTradeNotPending
	}
	if actor.Id != trade.ReceiverId {
		return ErrNotTradeParty
	}
	trade.Status = TradeRejected
	s.logf("%s rejects the trade", actor.Name)
	return nil
}

// cancelTrade is sender-only and idempotent: cancelling a trade that is
// already terminal succeeds without touching it.
func (s *Session) cancelTrade(actor *Player, tradeId string) error {
	trade, ok := s.Trades[tradeId]
	if !ok {
		return ErrUnknownTrade
	}
	if actor.Id != trade.SenderId {
		return ErrNotTradeParty
	}
	if trade.Status != TradePending {
		return nil
	}
	trade.Status = TradeCancelled
	s.logf("%s cancels the trade", actor.Name)
	return nil
}

func (s *Session) transferTile(t *Tile, from, to *Player) {
	delete(from.Properties, t.Id)
	to.Properties[t.Id] = true
	t.OwnerId = to.Id
}

// scheduleTradeEval lines up the automated receiver's verdict after the
// usual thinking delay. Human receivers answer over the command surface.
func (s *Session) scheduleTradeEval(trade *TradeOffer) {
	receiver := s.player(trade.ReceiverId)
	if receiver == nil || !receiver.Bot {
		return
	}
	agent := s.agents[receiver.Id]
	if agent == nil {
		return
	}
	id := receiver.Id
	tradeId := trade.Id
	snap := s.snapshot()
	s.sched.Schedule(s.Id+".trade."+tradeId, s.Config.AgentDelay, func() {
		var view *TradeSnapshot
		for i := range snap.Trades {
			if snap.Trades[i].Id == tradeId {
				view = &snap.Trades[i]
			}
		}
		if view == nil {
			return
		}
		if agent.EvaluateTrade(snap, id, view) {
			s.Apply(id, Command{Action: ActionAcceptTrade, TradeId: tradeId})
		} else {
			s.Apply(id, Command{Action: ActionRejectTrade, TradeId: tradeId})
		}
	})
}
