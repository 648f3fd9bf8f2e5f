package engine

import (
	log "github.com/sirupsen/logrus"
)

// rollDice resolves one roll for the current party: dice, doubles
// bookkeeping, movement, landing. Debt always blocks rolling, and debt
// picked up during landing revokes any reroll the doubles earned.
func (s *Session) rollDice(p *Player) error {
	if !s.Started {
		return ErrNotStarted
	}
	if s.Ended {
		return ErrEnded
	}
	if cur := s.current(); cur == nil || cur.Id != p.Id {
		return ErrNotYourTurn
	}
	if p.Balance < 0 {
		return ErrInDebt
	}
	if !s.MustRoll && !s.CanRollAgain {
		return ErrRollNotAllowed
	}

	d1, d2 := s.roll()
	s.Dice = [2]int{d1, d2}
	s.MustRoll = false
	s.CanRollAgain = false

	if p.InJail {
		return s.rollInJail(p, d1, d2)
	}

	if d1 == d2 {
		p.Stats.Doubles++
		s.DoublesStreak++
		if s.DoublesStreak >= 3 {
			s.logf("%s rolled three doubles in a row and goes to jail", p.Name)
			s.sendToJail(p)
			s.advanceTurn()
			return nil
		}
		s.CanRollAgain = true
	} else {
		s.DoublesStreak = 0
	}

	s.move(p, d1+d2)
	s.logf("%s rolled %d and %d", p.Name, d1, d2)
	if ended := s.resolveLanding(p, d1+d2); ended {
		return nil
	}
	if p.Balance < 0 {
		s.CanRollAgain = false
	}
	return nil
}

// rollInJail: doubles free the party and the total is used for one move
// with no reroll. A failed attempt ends the turn; the third failed attempt
// force-pays the fine if the party can afford it, otherwise they stay.
func (s *Session) rollInJail(p *Player, d1, d2 int) error {
	if d1 == d2 {
		p.Stats.Doubles++
		p.InJail = false
		p.JailTurns = 0
		s.logf("%s rolled doubles and is released from jail", p.Name)
		s.move(p, d1+d2)
		s.resolveLanding(p, d1+d2)
		return nil
	}
	p.JailTurns++
	if p.JailTurns >= 3 {
		if p.Balance >= s.Config.JailFine {
			p.Balance -= s.Config.JailFine
			p.InJail = false
			p.JailTurns = 0
			s.logf("%s pays the %d fine and is released from jail", p.Name, s.Config.JailFine)
			s.move(p, d1+d2)
			s.resolveLanding(p, d1+d2)
			return nil
		}
		// cannot pay: stays jailed with a fresh counter
		p.JailTurns = 0
		s.logf("%s cannot afford the jail fine and stays in jail", p.Name)
	} else {
		s.logf("%s failed to roll doubles in jail (%d/3)", p.Name, p.JailTurns)
	}
	s.advanceTurn()
	return nil
}

// move advances a party clockwise, paying the pass bonus on wraparound.
func (s *Session) move(p *Player, steps int) {
	old := p.Position
	p.Position = (old + steps) % len(s.Tiles)
	if p.Position < old {
		p.Balance += s.Config.PassBonus
		s.logf("%s passes Start and collects %d", p.Name, s.Config.PassBonus)
	}
	p.Stats.TileVisits[p.Position]++
}

// resolveLanding dispatches on the landed tile type. Returns true when the
// landing force-ended the turn.
func (s *Session) resolveLanding(p *Player, diceTotal int) bool {
	t := s.Tiles[p.Position]
	switch t.Type {
	case "go-to-jail":
		s.logf("%s is sent to jail", p.Name)
		s.sendToJail(p)
		s.advanceTurn()
		return true
	case "vacation":
		if s.VacationFund > 0 {
			p.Balance += s.VacationFund
			s.logf("%s collects the %d vacation fund", p.Name, s.VacationFund)
			s.VacationFund = 0
		}
		p.VacationSkips = s.Config.VacationSkips
	case "tax":
		amount := s.taxAmount(p, t)
		p.Balance -= amount
		if s.Config.TaxToVacation {
			s.VacationFund += amount
			s.logf("%s pays %d tax into the vacation fund", p.Name, amount)
		} else {
			s.logf("%s pays %d tax", p.Name, amount)
		}
	case "chance":
		return s.drawCard(p, s.chance)
	case "chest":
		return s.drawCard(p, s.chest)
	case "property", "transit", "utility":
		s.resolveProperty(p, t, diceTotal)
	}
	return false
}

func (s *Session) resolveProperty(p *Player, t *Tile, diceTotal int) {
	if t.OwnerId == "" {
		if t.Price > 0 && p.Balance < t.Price && s.Config.AutoAuction {
			// cannot afford it: straight to auction, no buy prompt
			if err := s.startAuction(t); err != nil {
				log.WithField("room", s.Id).Warn("auto-auction suppressed: ", err)
			}
		}
		return
	}
	if t.OwnerId == p.Id || t.Mortgaged {
		return
	}
	owner := s.player(t.OwnerId)
	if owner == nil || owner.Bankrupt {
		return
	}
	rent := s.rentFor(owner, t, diceTotal)
	p.Balance -= rent
	owner.Balance += rent
	s.logf("%s pays %d rent to %s for %s", p.Name, rent, owner.Name, t.Name)
}

func (s *Session) rentFor(owner *Player, t *Tile, diceTotal int) int {
	switch t.Type {
	case "transit":
		n := s.groupCount(owner, t.Group)
		if n > len(t.Rent) {
			n = len(t.Rent)
		}
		return t.Rent[n-1]
	case "utility":
		mult := t.Rent[0]
		if s.groupCount(owner, t.Group) >= 2 {
			mult = t.Rent[1]
		}
		return mult * diceTotal
	default:
		if t.Buildings > 0 {
			return t.Rent[t.Buildings]
		}
		rent := t.Rent[0]
		if s.ownsGroup(owner, t.Group) {
			rent *= 2
		}
		return rent
	}
}

// taxAmount: flat by tile price, or a progressive bracket on the payer's
// balance when the ruleset asks for it.
func (s *Session) taxAmount(p *Player, t *Tile) int {
	if !s.Config.ProgressiveTax || p.Balance <= 0 {
		return t.Price
	}
	switch {
	case p.Balance < 1000:
		return p.Balance / 10
	case p.Balance < 2000:
		return p.Balance * 15 / 100
	default:
		return p.Balance / 5
	}
}

func (s *Session) sendToJail(p *Player) {
	for _, t := range s.Tiles {
		if t.Type == "jail" {
			p.Position = t.Id
			break
		}
	}
	p.InJail = true
	p.JailTurns = 0
	s.DoublesStreak = 0
	s.MustRoll = false
	s.CanRollAgain = false
}

// payJailFine buys release before rolling.
func (s *Session) payJailFine(p *Player) error {
	if cur := s.current(); cur == nil || cur.Id != p.Id {
		return ErrNotYourTurn
	}
	if !p.InJail {
		return ErrNotJailed
	}
	if !s.MustRoll {
		return ErrRollNotAllowed
	}
	if p.Balance < s.Config.JailFine {
		return ErrInsufficientFunds
	}
	p.Balance -= s.Config.JailFine
	p.InJail = false
	p.JailTurns = 0
	s.logf("%s pays %d to leave jail", p.Name, s.Config.JailFine)
	return nil
}

func (s *Session) useJailCard(p *Player) error {
	if cur := s.current(); cur == nil || cur.Id != p.Id {
		return ErrNotYourTurn
	}
	if !p.InJail {
		return ErrNotJailed
	}
	if !s.MustRoll {
		return ErrRollNotAllowed
	}
	if p.JailCards <= 0 {
		return ErrNoJailCard
	}
	p.JailCards--
	p.InJail = false
	p.JailTurns = 0
	s.logf("%s uses a get-out-of-jail card", p.Name)
	return nil
}

// endTurn advances play to the next eligible party. A party in debt cannot
// end its turn; it must liquidate, trade, or declare bankruptcy first.
func (s *Session) endTurn(p *Player) error {
	if !s.Started {
		return ErrNotStarted
	}
	if s.Ended {
		return ErrEnded
	}
	if cur := s.current(); cur == nil || cur.Id != p.Id {
		return ErrNotYourTurn
	}
	if s.MustRoll {
		return ErrRollOwed
	}
	if s.CanRollAgain {
		return ErrRerollOwed
	}
	if p.Balance < 0 {
		return ErrInDebt
	}
	s.advanceTurn()
	return nil
}

// advanceTurn moves the cursor to the next eligible party with a bounded
// scan, skipping bankrupt and disconnected parties and burning one
// vacation-skip per pass. With nobody eligible the session marks itself
// paused instead of spinning.
func (s *Session) advanceTurn() {
	s.TotalTurns++
	for _, p := range s.Players {
		if !p.Bankrupt {
			p.WealthHistory = append(p.WealthHistory, s.wealth(p))
		}
	}
	s.MustRoll = false
	s.CanRollAgain = false
	s.DoublesStreak = 0
	if s.checkGameOver() {
		return
	}
	n := len(s.Players)
	for i := 1; i <= n; i++ {
		idx := (s.Turn + i) % n
		cand := s.Players[idx]
		if cand.Bankrupt {
			continue
		}
		if cand.Disconnected {
			s.logf("skipping %s (disconnected)", cand.Name)
			log.WithFields(log.Fields{"room": s.Id, "player": cand.Name}).Info("skipping disconnected player")
			continue
		}
		if cand.VacationSkips > 0 {
			cand.VacationSkips--
			s.logf("%s skips a turn (vacation)", cand.Name)
			continue
		}
		s.Turn = idx
		s.MustRoll = true
		s.Paused = false
		return
	}
	s.Paused = true
	s.logf("no player is able to take a turn")
}
