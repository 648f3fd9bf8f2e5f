package engine

// The property ledger: buy, build, sell, mortgage, liquidate. Every
// operation either fully applies or rejects with no effect.

const maxBuildings = 5

// buy purchases the unowned tile the actor currently stands on.
func (s *Session) buy(p *Player) error {
	if !s.Started {
		return ErrNotStarted
	}
	if s.Ended {
		return ErrEnded
	}
	if cur := s.current(); cur == nil || cur.Id != p.Id {
		return ErrNotYourTurn
	}
	t := s.Tiles[p.Position]
	if !t.buyable() || t.Price <= 0 {
		return ErrTileNotBuyable
	}
	if t.OwnerId != "" {
		return ErrTileOwned
	}
	if s.Auction != nil && s.Auction.Active && s.Auction.TileId == t.Id {
		return ErrAuctionRunning
	}
	if p.Balance < t.Price {
		return ErrInsufficientFunds
	}
	p.Balance -= t.Price
	t.OwnerId = p.Id
	p.Properties[t.Id] = true
	s.logf("%s buys %s for %d", p.Name, t.Name, t.Price)
	return nil
}

// decline passes on the purchase. With auto-auction on, the tile goes to
// auction instead of staying idle.
func (s *Session) decline(p *Player) error {
	if !s.Started {
		return ErrNotStarted
	}
	if cur := s.current(); cur == nil || cur.Id != p.Id {
		return ErrNotYourTurn
	}
	t := s.Tiles[p.Position]
	if !t.buyable() || t.OwnerId != "" {
		return ErrTileNotBuyable
	}
	s.logf("%s declines to buy %s", p.Name, t.Name)
	if s.Config.AutoAuction {
		return s.startAuction(t)
	}
	return nil
}

// build adds one building. Requires the full group and, under the
// even-build rule, that no sibling tile lags behind.
func (s *Session) build(p *Player, tileId int) error {
	t, err := s.tile(tileId)
	if err != nil {
		return err
	}
	if t.OwnerId != p.Id {
		return ErrNotYourTile
	}
	if t.Type != "property" {
		return ErrTileNotBuyable
	}
	if t.Mortgaged {
		return ErrTileMortgaged
	}
	if !s.ownsGroup(p, t.Group) {
		return ErrNoMonopoly
	}
	if t.Buildings >= maxBuildings {
		return ErrMaxBuildings
	}
	if s.Config.EvenBuild {
		for _, sib := range s.Tiles {
			if sib.Group == t.Group && sib.Id != t.Id && sib.Buildings < t.Buildings {
				return ErrUnevenBuild
			}
		}
	}
	for _, sib := range s.Tiles {
		if sib.Group == t.Group && sib.Mortgaged {
			return ErrTileMortgaged
		}
	}
	if p.Balance < t.HouseCost {
		return ErrInsufficientFunds
	}
	p.Balance -= t.HouseCost
	t.Buildings++
	s.logf("%s builds on %s (%d)", p.Name, t.Name, t.Buildings)
	return nil
}

// sellHouse removes one building for half its cost.
func (s *Session) sellHouse(p *Player, tileId int) error {
	t, err := s.tile(tileId)
	if err != nil {
		return err
	}
	if t.OwnerId != p.Id {
		return ErrNotYourTile
	}
	if t.Buildings <= 0 {
		return ErrNoBuildings
	}
	if s.Config.EvenBuild {
		for _, sib := range s.Tiles {
			if sib.Group == t.Group && sib.Id != t.Id && sib.Buildings > t.Buildings {
				return ErrUnevenBuild
			}
		}
	}
	t.Buildings--
	refund := t.HouseCost / 2
	p.Balance += refund
	s.logf("%s sells a building on %s for %d", p.Name, t.Name, refund)
	return nil
}

// mortgage pays out half the tile price and freezes it.
func (s *Session) mortgage(p *Player, tileId int) error {
	t, err := s.tile(tileId)
	if err != nil {
		return err
	}
	if t.OwnerId != p.Id {
		return ErrNotYourTile
	}
	if t.Mortgaged {
		return ErrTileMortgaged
	}
	if t.Buildings > 0 {
		return ErrHasBuildings
	}
	t.Mortgaged = true
	p.Balance += t.Price / 2
	s.logf("%s mortgages %s for %d", p.Name, t.Name, t.Price/2)
	return nil
}

// unmortgage costs the mortgage value plus 10%.
func (s *Session) unmortgage(p *Player, tileId int) error {
	t, err := s.tile(tileId)
	if err != nil {
		return err
	}
	if t.OwnerId != p.Id {
		return ErrNotYourTile
	}
	if !t.Mortgaged {
		return ErrNotMortgaged
	}
	cost := t.Price / 2 * 110 / 100
	if p.Balance < cost {
		return ErrInsufficientFunds
	}
	p.Balance -= cost
	t.Mortgaged = false
	s.logf("%s unmortgages %s for %d", p.Name, t.Name, cost)
	return nil
}

// liquidate sells the tile back to the open market. A mortgaged tile
// refunds nothing since its mortgage value was already realized.
func (s *Session) liquidate(p *Player, tileId int) error {
	t, err := s.tile(tileId)
	if err != nil {
		return err
	}
	if t.OwnerId != p.Id {
		return ErrNotYourTile
	}
	if t.Buildings > 0 {
		return ErrHasBuildings
	}
	refund := t.Price
	if t.Mortgaged {
		refund = 0
	}
	t.OwnerId = ""
	t.Mortgaged = false
	delete(p.Properties, t.Id)
	p.Balance += refund
	s.logf("%s sells %s back to the bank for %d", p.Name, t.Name, refund)
	return nil
}
