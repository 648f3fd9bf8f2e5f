package engine

import (
	"math/rand"

	"github.com/tycoonhq/backend/app/models"
)

// deck is a shuffled card pile drawn with wraparound replacement. A drawn
// jail-release card is consumed instead of returned to the bottom.
type deck struct {
	cards []models.CardDef
	next  int
}

func newDeck(defs []models.CardDef, rng *rand.Rand) *deck {
	d := &deck{cards: append([]models.CardDef{}, defs...)}
	d.shuffle(rng)
	return d
}

func (d *deck) shuffle(rng *rand.Rand) {
	d.next = 0
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

func (d *deck) draw() (models.CardDef, bool) {
	if len(d.cards) == 0 {
		return models.CardDef{}, false
	}
	card := d.cards[d.next]
	if card.Effect == "jail-card" {
		d.cards = append(d.cards[:d.next], d.cards[d.next+1:]...)
		if len(d.cards) > 0 {
			d.next = d.next % len(d.cards)
		} else {
			d.next = 0
		}
	} else {
		d.next = (d.next + 1) % len(d.cards)
	}
	return card, true
}

// drawCard pulls from the tile's deck and executes the effect. Returns true
// when the effect force-ended the turn. Callers hold the mutex.
func (s *Session) drawCard(p *Player, pile *deck) bool {
	card, ok := pile.draw()
	if !ok {
		return false
	}
	s.logf("%s draws: %s", p.Name, card.Text)
	switch card.Effect {
	case "move":
		s.moveTo(p, card.Dest)
		return s.resolveLanding(p, s.Dice[0]+s.Dice[1])
	case "advance":
		n := len(s.Tiles)
		p.Position = ((p.Position+card.Amount)%n + n) % n
		p.Stats.TileVisits[p.Position]++
		return s.resolveLanding(p, s.Dice[0]+s.Dice[1])
	case "collect":
		p.Balance += card.Amount
	case "pay":
		p.Balance -= card.Amount
	case "collect-each":
		for _, other := range s.Players {
			if other.Id == p.Id || other.Bankrupt {
				continue
			}
			other.Balance -= card.Amount
			p.Balance += card.Amount
		}
	case "pay-each":
		for _, other := range s.Players {
			if other.Id == p.Id || other.Bankrupt {
				continue
			}
			p.Balance -= card.Amount
			other.Balance += card.Amount
		}
	case "repairs":
		buildings := 0
		for id := range p.Properties {
			buildings += s.Tiles[id].Buildings
		}
		p.Balance -= buildings * card.Amount
	case "jail":
		s.sendToJail(p)
		s.advanceTurn()
		return true
	case "jail-card":
		p.JailCards++
	}
	return false
}

// moveTo places a party on a destination tile, crediting the pass bonus when
// the move wraps past Start.
func (s *Session) moveTo(p *Player, dest int) {
	if dest < p.Position {
		p.Balance += s.Config.PassBonus
		s.logf("%s passes Start and collects %d", p.Name, s.Config.PassBonus)
	}
	p.Position = dest
	p.Stats.TileVisits[dest]++
}
