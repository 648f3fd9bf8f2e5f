package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tycoonhq/backend/app/models"
)

// Command actions. The socket layer maps its events onto these 1:1.
const (
	ActionRoll              = "roll"
	ActionBuy               = "buy-property"
	ActionDecline           = "decline-property"
	ActionEndTurn           = "end-turn"
	ActionBuild             = "build-house"
	ActionSellHouse         = "sell-house"
	ActionMortgage          = "mortgage"
	ActionUnmortgage        = "unmortgage"
	ActionLiquidate         = "sell-to-bank"
	ActionPayJailFine       = "pay-jail-fine"
	ActionUseJailCard       = "use-jail-card"
	ActionProposeTrade      = "propose-trade"
	ActionAcceptTrade       = "accept-trade"
	ActionCounterTrade      = "counter-trade"
	ActionRejectTrade       = "reject-trade"
	ActionCancelTrade       = "cancel-trade"
	ActionPlaceBid          = "place-bid"
	ActionCompleteAuction   = "complete-auction"
	ActionDeclareBankruptcy = "declare-bankruptcy"
	ActionRestart           = "restart"
	ActionChat              = "chat"
)

// Command is the single unit of mutation. Every external event and every
// timer-synthesized action enters the session as one of these.
type Command struct {
	Action   string      `json:"action"`
	TileId   int         `json:"tileId"`
	Amount   int         `json:"amount"`
	TradeId  string      `json:"tradeId"`
	TargetId string      `json:"targetId"` // trade receiver, or bankruptcy creditor
	Terms    *TradeTerms `json:"terms"`
	Text     string      `json:"text"`
}

// Config holds the per-room ruleset toggles.
type Config struct {
	MaxPlayers      int
	StartingBalance int
	PassBonus       int
	JailFine        int
	VacationSkips   int
	AutoAuction     bool
	EvenBuild       bool
	ProgressiveTax  bool
	TaxToVacation   bool
	EvictAfter      time.Duration
	AgentDelay      time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxPlayers:      8,
		StartingBalance: 1500,
		PassBonus:       200,
		JailFine:        50,
		VacationSkips:   1,
		AutoAuction:     true,
		EvenBuild:       true,
		TaxToVacation:   true,
		EvictAfter:      3 * time.Minute,
		AgentDelay:      1500 * time.Millisecond,
	}
}

// Tile is the runtime state of one board position.
type Tile struct {
	Id        int
	Name      string
	Type      string
	Group     string
	Price     int
	Rent      []int
	HouseCost int
	OwnerId   string
	Buildings int
	Mortgaged bool
}

func (t *Tile) buyable() bool {
	return t.Type == "property" || t.Type == "transit" || t.Type == "utility"
}

type PlayerStats struct {
	Doubles    int
	Trades     int
	Chats      int
	TileVisits map[int]int
}

// Player is one party in the room. Id is transport-session scoped and is
// rebound by the connection supervisor on reconnect.
type Player struct {
	Id             string
	Name           string
	Color          string
	Balance        int
	Position       int
	Properties     map[int]bool
	InJail         bool
	JailTurns      int
	JailCards      int
	VacationSkips  int
	Bankrupt       bool
	Disconnected   bool
	DisconnectedAt time.Time
	Host           bool
	Bot            bool
	Stats          PlayerStats
	WealthHistory  []int
}

type LogEntry struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

const maxLogEntries = 100

// Broadcaster receives the full snapshot after every successful mutation.
type Broadcaster interface {
	Publish(roomId string, snap *Snapshot)
}

// Deps are the injected collaborators of a session. Zero-value fields get
// production defaults from NewSession.
type Deps struct {
	Clock     Clock
	Scheduler Scheduler
	Broadcast Broadcaster
	Roll      func() (int, int) // dice source, overridable in tests
	Seed      int64             // deck shuffle seed, 0 = time-based
	OnEmpty   func(roomId string)
}

// Session is the aggregate root of one room. All mutation goes through
// Apply, which serializes commands under one mutex.
type Session struct {
	mu sync.Mutex

	Id            string
	Name          string
	Config        Config
	Tiles         []*Tile
	Players       []*Player
	Turn          int
	Dice          [2]int
	DoublesStreak int
	MustRoll      bool
	CanRollAgain  bool
	Started       bool
	Ended         bool
	Paused        bool // no eligible party to advance to
	WinnerId      string
	VacationFund  int
	TotalTurns    int
	Log           []LogEntry
	Trades        map[string]*TradeOffer
	Auction       *Auction

	chance *deck
	chest  *deck
	agents map[string]Agent

	clock   Clock
	sched   Scheduler
	cast    Broadcaster
	roll    func() (int, int)
	rng     *rand.Rand
	onEmpty func(string)
}

func NewSession(id, name string, cfg Config, tiles []models.TileDef, chance, chest []models.CardDef, deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = NewClock()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = NewTimerScheduler()
	}
	seed := deps.Seed
	if seed == 0 {
		seed = deps.Clock.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	if deps.Roll == nil {
		deps.Roll = func() (int, int) { return rng.Intn(6) + 1, rng.Intn(6) + 1 }
	}
	s := &Session{
		Id:      id,
		Name:    name,
		Config:  cfg,
		Trades:  make(map[string]*TradeOffer),
		agents:  make(map[string]Agent),
		clock:   deps.Clock,
		sched:   deps.Scheduler,
		cast:    deps.Broadcast,
		roll:    deps.Roll,
		rng:     rng,
		onEmpty: deps.OnEmpty,
	}
	for _, def := range tiles {
		s.Tiles = append(s.Tiles, &Tile{
			Id:        def.Id,
			Name:      def.Name,
			Type:      def.Type,
			Group:     def.Group,
			Price:     def.Price,
			Rent:      def.Rent,
			HouseCost: def.HouseCost,
		})
	}
	s.chance = newDeck(chance, rng)
	s.chest = newDeck(chest, rng)
	return s
}

var playerColors = []string{"red", "blue", "green", "yellow", "purple", "orange", "cyan", "pink"}

// AddPlayer joins a party into the room. The first party becomes host.
func (s *Session) AddPlayer(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Started {
		return ErrAlreadyStarted
	}
	if len(s.Players) >= s.Config.MaxPlayers {
		return ErrRoomFull
	}
	p := &Player{
		Id:         id,
		Name:       name,
		Color:      playerColors[len(s.Players)%len(playerColors)],
		Balance:    s.Config.StartingBalance,
		Properties: make(map[int]bool),
		Host:       len(s.Players) == 0,
		Stats:      PlayerStats{TileVisits: make(map[int]int)},
	}
	s.Players = append(s.Players, p)
	s.logf("%s joined the room", name)
	s.publish()
	return nil
}

// AddBot joins an agent-driven party.
func (s *Session) AddBot(id, name string, agent Agent) error {
	if err := s.AddPlayer(id, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.player(id); p != nil {
		p.Bot = true
		s.agents[id] = agent
	}
	return nil
}

// Start begins play. Host only, two parties minimum.
func (s *Session) Start(actorId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.player(actorId)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.Host {
		return ErrNotHost
	}
	if s.Started {
		return ErrAlreadyStarted
	}
	if len(s.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	s.Started = true
	s.Turn = 0
	s.MustRoll = true
	s.logf("game started with %d players", len(s.Players))
	log.WithFields(log.Fields{"room": s.Id, "players": len(s.Players)}).Info("game started")
	s.publish()
	return nil
}

// Apply validates and executes one command. On success the full snapshot is
// pushed to the broadcast collaborator; on error nothing was mutated.
func (s *Session) Apply(actorId string, cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dispatch(actorId, cmd); err != nil {
		log.WithFields(log.Fields{"room": s.Id, "actor": actorId, "action": cmd.Action}).Debug(err)
		return err
	}
	s.publish()
	return nil
}

func (s *Session) dispatch(actorId string, cmd Command) error {
	actor := s.player(actorId)
	if actor == nil {
		return ErrUnknownPlayer
	}
	switch cmd.Action {
	case ActionRoll:
		return s.rollDice(actor)
	case ActionBuy:
		return s.buy(actor)
	case ActionDecline:
		return s.decline(actor)
	case ActionEndTurn:
		return s.endTurn(actor)
	case ActionBuild:
		return s.build(actor, cmd.TileId)
	case ActionSellHouse:
		return s.sellHouse(actor, cmd.TileId)
	case ActionMortgage:
		return s.mortgage(actor, cmd.TileId)
	case ActionUnmortgage:
		return s.unmortgage(actor, cmd.TileId)
	case ActionLiquidate:
		return s.liquidate(actor, cmd.TileId)
	case ActionPayJailFine:
		return s.payJailFine(actor)
	case ActionUseJailCard:
		return s.useJailCard(actor)
	case ActionProposeTrade:
		return s.proposeTrade(actor, cmd.TargetId, cmd.Terms)
	case ActionAcceptTrade:
		return s.acceptTrade(actor, cmd.TradeId)
	case ActionCounterTrade:
		return s.counterTrade(actor, cmd.TradeId, cmd.Terms)
	case ActionRejectTrade:
		return s.rejectTrade(actor, cmd.TradeId)
	case ActionCancelTrade:
		return s.cancelTrade(actor, cmd.TradeId)
	case ActionPlaceBid:
		return s.placeBid(actor, cmd.Amount)
	case ActionCompleteAuction:
		return s.completeAuction()
	case ActionDeclareBankruptcy:
		return s.declareBankruptcy(actor, cmd.TargetId)
	case ActionRestart:
		return s.restart(actor)
	case ActionChat:
		return s.chat(actor, cmd.Text)
	}
	return ErrUnknownCommand
}

// CompleteAuction is the timer entry point; it carries no actor.
func (s *Session) CompleteAuction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.completeAuction(); err != nil {
		return
	}
	s.publish()
}

func (s *Session) chat(actor *Player, text string) error {
	if text == "" {
		return fmt.Errorf("empty message")
	}
	actor.Stats.Chats++
	s.logf("%s: %s", actor.Name, text)
	return nil
}

// restart resets the room to a fresh started state with the same roster.
func (s *Session) restart(actor *Player) error {
	if !actor.Host {
		return ErrNotHost
	}
	if !s.Started {
		return ErrNotStarted
	}
	for _, p := range s.Players {
		p.Balance = s.Config.StartingBalance
		p.Position = 0
		p.Properties = make(map[int]bool)
		p.InJail = false
		p.JailTurns = 0
		p.JailCards = 0
		p.VacationSkips = 0
		p.Bankrupt = false
		p.Stats = PlayerStats{TileVisits: make(map[int]int)}
		p.WealthHistory = nil
	}
	for _, t := range s.Tiles {
		t.OwnerId = ""
		t.Buildings = 0
		t.Mortgaged = false
	}
	s.Turn = 0
	s.Dice = [2]int{}
	s.DoublesStreak = 0
	s.MustRoll = true
	s.CanRollAgain = false
	s.Ended = false
	s.Paused = false
	s.WinnerId = ""
	s.VacationFund = 0
	s.TotalTurns = 0
	s.Trades = make(map[string]*TradeOffer)
	s.Auction = nil
	s.sched.Cancel(s.Id + ".auction")
	s.chance.shuffle(s.rng)
	s.chest.shuffle(s.rng)
	s.logf("%s restarted the game", actor.Name)
	return nil
}

func (s *Session) current() *Player {
	if len(s.Players) == 0 || s.Turn >= len(s.Players) {
		return nil
	}
	return s.Players[s.Turn]
}

func (s *Session) player(id string) *Player {
	for _, p := range s.Players {
		if p.Id == id {
			return p
		}
	}
	return nil
}

func (s *Session) tile(id int) (*Tile, error) {
	if id < 0 || id >= len(s.Tiles) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTile, id)
	}
	return s.Tiles[id], nil
}

// ownsGroup reports whether p owns every tile in the group.
func (s *Session) ownsGroup(p *Player, group string) bool {
	if group == "" {
		return false
	}
	for _, t := range s.Tiles {
		if t.Group == group && t.OwnerId != p.Id {
			return false
		}
	}
	return true
}

func (s *Session) groupCount(p *Player, group string) int {
	n := 0
	for _, t := range s.Tiles {
		if t.Group == group && t.OwnerId == p.Id {
			n++
		}
	}
	return n
}

// wealth is balance plus realizable asset value, sampled once per turn for
// the post-game charts.
func (s *Session) wealth(p *Player) int {
	total := p.Balance
	for id := range p.Properties {
		t := s.Tiles[id]
		if t.Mortgaged {
			total += t.Price / 2
		} else {
			total += t.Price
		}
		total += t.Buildings * t.HouseCost
	}
	return total
}

func (s *Session) logf(format string, args ...interface{}) {
	s.Log = append(s.Log, LogEntry{At: s.clock.Now(), Text: fmt.Sprintf(format, args...)})
	if len(s.Log) > maxLogEntries {
		s.Log = s.Log[len(s.Log)-maxLogEntries:]
	}
}

// publish derives the snapshot and hands it to the broadcast collaborator,
// then lines up the next agent step if an automated party is due to act.
// Callers hold the mutex.
func (s *Session) publish() {
	if s.cast != nil {
		s.cast.Publish(s.Id, s.snapshot())
	}
	s.maybeScheduleAgent()
}

// Snapshot returns the current broadcast view of the session.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}
