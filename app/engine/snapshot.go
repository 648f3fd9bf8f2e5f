package engine

import "time"

// Snapshot is the full broadcast view of a session. It is what clients
// render against and what the round-trip guarantees cover: re-hydrating a
// marshalled snapshot loses no ownership or balance information.
type Snapshot struct {
	Id            string           `json:"id"`
	Name          string           `json:"name"`
	Started       bool             `json:"started"`
	Ended         bool             `json:"ended"`
	Paused        bool             `json:"paused"`
	WinnerId      string           `json:"winnerId,omitempty"`
	CurrentId     string           `json:"currentId"`
	Dice          [2]int           `json:"dice"`
	DoublesStreak int              `json:"doublesStreak"`
	MustRoll      bool             `json:"mustRoll"`
	CanRollAgain  bool             `json:"canRollAgain"`
	VacationFund  int              `json:"vacationFund"`
	TotalTurns    int              `json:"totalTurns"`
	Players       []PlayerSnapshot `json:"players"`
	Tiles         []TileSnapshot   `json:"tiles"`
	Trades        []TradeSnapshot  `json:"trades"`
	Auction       *AuctionSnapshot `json:"auction,omitempty"`
	Log           []LogEntry       `json:"log"`
}

type PlayerSnapshot struct {
	Id            string      `json:"id"`
	Name          string      `json:"name"`
	Color         string      `json:"color"`
	Balance       int         `json:"balance"`
	Position      int         `json:"position"`
	Properties    []int       `json:"properties"`
	InJail        bool        `json:"inJail"`
	JailTurns     int         `json:"jailTurns"`
	JailCards     int         `json:"jailCards"`
	VacationSkips int         `json:"vacationSkips"`
	Bankrupt      bool        `json:"bankrupt"`
	Disconnected  bool        `json:"disconnected"`
	Host          bool        `json:"host"`
	Bot           bool        `json:"bot"`
	Doubles       int         `json:"doubles"`
	TradesDone    int         `json:"tradesDone"`
	Chats         int         `json:"chats"`
	TileVisits    map[int]int `json:"tileVisits"`
	WealthHistory []int       `json:"wealthHistory"`
}

type TileSnapshot struct {
	Id        int    `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Group     string `json:"group,omitempty"`
	Price     int    `json:"price,omitempty"`
	OwnerId   string `json:"ownerId,omitempty"`
	Buildings int    `json:"buildings"`
	Mortgaged bool   `json:"mortgaged"`
}

type TradeSnapshot struct {
	Id           string `json:"id"`
	SenderId     string `json:"senderId"`
	ReceiverId   string `json:"receiverId"`
	OfferMoney   int    `json:"offerMoney"`
	OfferTiles   []int  `json:"offerTiles"`
	RequestMoney int    `json:"requestMoney"`
	RequestTiles []int  `json:"requestTiles"`
	Status       string `json:"status"`
}

type AuctionSnapshot struct {
	TileId   int       `json:"tileId"`
	TileName string    `json:"tileName"`
	Bid      int       `json:"bid"`
	LeaderId string    `json:"leaderId,omitempty"`
	Deadline time.Time `json:"deadline"`
}

// snapshot derives the broadcast view. Callers hold the mutex.
func (s *Session) snapshot() *Snapshot {
	snap := &Snapshot{
		Id:            s.Id,
		Name:          s.Name,
		Started:       s.Started,
		Ended:         s.Ended,
		Paused:        s.Paused,
		WinnerId:      s.WinnerId,
		Dice:          s.Dice,
		DoublesStreak: s.DoublesStreak,
		MustRoll:      s.MustRoll,
		CanRollAgain:  s.CanRollAgain,
		VacationFund:  s.VacationFund,
		TotalTurns:    s.TotalTurns,
		Trades:        []TradeSnapshot{},
		Log:           append([]LogEntry{}, s.Log...),
	}
	if cur := s.current(); cur != nil {
		snap.CurrentId = cur.Id
	}
	for _, p := range s.Players {
		props := []int{}
		for id := range p.Properties {
			props = append(props, id)
		}
		visits := make(map[int]int, len(p.Stats.TileVisits))
		for k, v := range p.Stats.TileVisits {
			visits[k] = v
		}
		snap.Players = append(snap.Players, PlayerSnapshot{
			Id:            p.Id,
			Name:          p.Name,
			Color:         p.Color,
			Balance:       p.Balance,
			Position:      p.Position,
			Properties:    props,
			InJail:        p.InJail,
			JailTurns:     p.JailTurns,
			JailCards:     p.JailCards,
			VacationSkips: p.VacationSkips,
			Bankrupt:      p.Bankrupt,
			Disconnected:  p.Disconnected,
			Host:          p.Host,
			Bot:           p.Bot,
			Doubles:       p.Stats.Doubles,
			TradesDone:    p.Stats.Trades,
			Chats:         p.Stats.Chats,
			TileVisits:    visits,
			WealthHistory: append([]int{}, p.WealthHistory...),
		})
	}
	for _, t := range s.Tiles {
		snap.Tiles = append(snap.Tiles, TileSnapshot{
			Id:        t.Id,
			Name:      t.Name,
			Type:      t.Type,
			Group:     t.Group,
			Price:     t.Price,
			OwnerId:   t.OwnerId,
			Buildings: t.Buildings,
			Mortgaged: t.Mortgaged,
		})
	}
	for _, tr := range s.Trades {
		snap.Trades = append(snap.Trades, TradeSnapshot{
			Id:           tr.Id,
			SenderId:     tr.SenderId,
			ReceiverId:   tr.ReceiverId,
			OfferMoney:   tr.Terms.OfferMoney,
			OfferTiles:   append([]int{}, tr.Terms.OfferTiles...),
			RequestMoney: tr.Terms.RequestMoney,
			RequestTiles: append([]int{}, tr.Terms.RequestTiles...),
			Status:       tr.Status,
		})
	}
	if s.Auction != nil && s.Auction.Active {
		snap.Auction = &AuctionSnapshot{
			TileId:   s.Auction.TileId,
			TileName: s.Auction.TileName,
			Bid:      s.Auction.Bid,
			LeaderId: s.Auction.LeaderId,
			Deadline: s.Auction.Deadline,
		}
	}
	return snap
}
