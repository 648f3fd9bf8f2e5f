package engine

import (
	log "github.com/sirupsen/logrus"
)

// Agent is the capability that makes a party playable without a socket:
// a human is a command stream, a bot is this. The turn engine never
// branches on which one it is talking to.
type Agent interface {
	DecideTurnAction(snap *Snapshot, playerId string) *Command
	EvaluateTrade(snap *Snapshot, playerId string, trade *TradeSnapshot) bool
}

// maybeScheduleAgent lines up the next automated step when the party to act
// is agent-driven. Runs after every publish; callers hold the mutex.
func (s *Session) maybeScheduleAgent() {
	if !s.Started || s.Ended || s.Paused {
		return
	}
	cur := s.current()
	if cur == nil || !cur.Bot || cur.Bankrupt {
		return
	}
	if s.agents[cur.Id] == nil {
		return
	}
	id := cur.Id
	s.sched.Schedule(s.Id+".agent", s.Config.AgentDelay, func() {
		s.agentStep(id)
	})
}

// agentStep feeds one agent decision through the normal command path. If
// the agent errors out or hands back an illegal command, the engine forces
// the turn onward rather than leave the room wedged.
func (s *Session) agentStep(playerId string) {
	s.mu.Lock()
	cur := s.current()
	if s.Ended || !s.Started || cur == nil || cur.Id != playerId {
		s.mu.Unlock()
		return
	}
	agent := s.agents[playerId]
	snap := s.snapshot()
	s.mu.Unlock()
	if agent == nil {
		return
	}

	cmd := safeDecide(agent, snap, playerId)
	if cmd != nil {
		if err := s.Apply(playerId, *cmd); err == nil {
			return
		}
	}
	if err := s.Apply(playerId, Command{Action: ActionEndTurn}); err != nil {
		if err == ErrRollOwed || err == ErrRerollOwed {
			if s.Apply(playerId, Command{Action: ActionRoll}) == nil {
				return
			}
		}
		// still stuck: bankruptcy is the liveness valve
		if err := s.Apply(playerId, Command{Action: ActionDeclareBankruptcy}); err != nil {
			log.WithFields(log.Fields{"room": s.Id, "player": playerId}).Warn("agent fallback failed: ", err)
		}
	}
}

// safeDecide guards against a panicking agent implementation.
func safeDecide(agent Agent, snap *Snapshot, playerId string) (cmd *Command) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("agent panicked: ", r)
			cmd = nil
		}
	}()
	return agent.DecideTurnAction(snap, playerId)
}

// HeuristicAgent is the built-in automated player: roll when owed, buy what
// it can afford with a cash reserve, dig out of debt, otherwise pass.
type HeuristicAgent struct {
	Reserve int // cash floor kept after purchases
}

func NewHeuristicAgent() *HeuristicAgent { return &HeuristicAgent{Reserve: 200} }

func (a *HeuristicAgent) DecideTurnAction(snap *Snapshot, playerId string) *Command {
	var me *PlayerSnapshot
	for i := range snap.Players {
		if snap.Players[i].Id == playerId {
			me = &snap.Players[i]
		}
	}
	if me == nil {
		return nil
	}
	if me.Balance < 0 {
		return a.digOut(snap, me)
	}
	if me.InJail && snap.MustRoll {
		if me.JailCards > 0 {
			return &Command{Action: ActionUseJailCard}
		}
		return &Command{Action: ActionRoll}
	}
	if snap.MustRoll || snap.CanRollAgain {
		return &Command{Action: ActionRoll}
	}
	if snap.Auction != nil && snap.Auction.LeaderId != playerId {
		next := snap.Auction.Bid + 10
		tile := snap.Tiles[snap.Auction.TileId]
		if next <= tile.Price && me.Balance-next >= a.Reserve {
			return &Command{Action: ActionPlaceBid, Amount: next}
		}
	}
	tile := snap.Tiles[me.Position]
	if tile.OwnerId == "" && tile.Price > 0 && isBuyableType(tile.Type) && me.Balance-tile.Price >= a.Reserve {
		return &Command{Action: ActionBuy}
	}
	return &Command{Action: ActionEndTurn}
}

// digOut raises cash while in debt: sell buildings, then mortgage, then
// give up.
func (a *HeuristicAgent) digOut(snap *Snapshot, me *PlayerSnapshot) *Command {
	for _, id := range me.Properties {
		if snap.Tiles[id].Buildings > 0 {
			return &Command{Action: ActionSellHouse, TileId: id}
		}
	}
	for _, id := range me.Properties {
		if !snap.Tiles[id].Mortgaged {
			return &Command{Action: ActionMortgage, TileId: id}
		}
	}
	return &Command{Action: ActionDeclareBankruptcy}
}

// EvaluateTrade accepts any trade that does not lose value on paper.
func (a *HeuristicAgent) EvaluateTrade(snap *Snapshot, playerId string, trade *TradeSnapshot) bool {
	value := trade.OfferMoney - trade.RequestMoney
	for _, id := range trade.OfferTiles {
		value += snap.Tiles[id].Price
	}
	for _, id := range trade.RequestTiles {
		value -= snap.Tiles[id].Price
	}
	return value >= 0
}

func isBuyableType(t string) bool {
	return t == "property" || t == "transit" || t == "utility"
}
