package socket

import (
	"encoding/json"
	"net/http"
	"os"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tycoonhq/backend/app/engine"
	"github.com/tycoonhq/backend/app/models"
	"github.com/tycoonhq/backend/pkg"
	"github.com/tycoonhq/backend/platform/board"
	"github.com/tycoonhq/backend/platform/cache"
	"github.com/tycoonhq/backend/platform/database"
	"github.com/tycoonhq/backend/platform/queries"
)

// payload is the envelope every game event carries.
type payload struct {
	GameId   string             `json:"game_id"`
	UserId   string             `json:"user_id"`
	OldId    string             `json:"old_id"`
	Name     string             `json:"name"`
	TileId   int                `json:"tile_id"`
	Amount   int                `json:"amount"`
	TradeId  string             `json:"trade_id"`
	TargetId string             `json:"target_id"`
	Text     string             `json:"text"`
	Terms    *engine.TradeTerms `json:"terms"`
}

// broadcaster pushes full snapshots into the socket room after every
// successful mutation.
type broadcaster struct {
	server *socketio.Server
}

func (b *broadcaster) Publish(roomId string, snap *engine.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Warn("failed marshalling snapshot: ", err)
		return
	}
	b.server.BroadcastToRoom("/", roomId, "game-state", string(data))
}

func CreateSocketIOServer(registry *engine.Registry) {
	server, err := socketio.NewServer(nil)
	if err != nil {
		panic(err)
	}
	db := database.PostgreSQLConnection()
	defer db.Close()

	pool := cache.CreateRedisPool()
	defer pool.Close()

	cast := &broadcaster{server: server}

	onEmpty := func(roomId string) {
		registry.Remove(roomId)
		queries.CleanupGame(roomId, db)
		conn := pool.Get()
		defer conn.Close()
		cache.Del("room."+roomId+".members", &conn)
		log.WithField("room", roomId).Info("room torn down")
	}

	parse := func(jsonStr string) payload {
		var p payload
		json.Unmarshal([]byte(jsonStr), &p)
		return p
	}

	session := func(p payload) *engine.Session {
		sess, ok := registry.Get(p.GameId)
		if !ok {
			return nil
		}
		return sess
	}

	// command wires one socket event onto one engine action.
	command := func(action string) func(socketio.Conn, string) {
		return func(s socketio.Conn, jsonStr string) {
			p := parse(jsonStr)
			sess := session(p)
			if sess == nil {
				s.Emit("error-message", "Invalid game")
				return
			}
			err := sess.Apply(p.UserId, engine.Command{
				Action:   action,
				TileId:   p.TileId,
				Amount:   p.Amount,
				TradeId:  p.TradeId,
				TargetId: p.TargetId,
				Terms:    p.Terms,
				Text:     p.Text,
			})
			if err != nil {
				s.Emit("error-message", err.Error())
			}
		}
	}

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		return nil
	})

	server.OnEvent("/", "join-game", func(s socketio.Conn, jsonStr string) {
		p := parse(jsonStr)
		if p.GameId == "" || p.UserId == "" {
			s.Emit("error-message", "Missing game or user")
			s.Emit("failed")
			return
		}
		if !queries.VerifyGame(p.GameId, db) {
			s.Emit("error-message", "Invalid game")
			s.Emit("failed")
			return
		}
		user, err := queries.GetUserData(p.UserId, db)
		if err != nil {
			s.Emit("error-message", "User retrieval failed")
			s.Emit("failed")
			return
		}

		sess, ok := registry.Get(p.GameId)
		if !ok {
			tiles, err := board.Build("classic", nil)
			if err != nil {
				s.Emit("error-message", "Board unavailable")
				s.Emit("failed")
				return
			}
			chance, chest := board.LoadCards()
			sess = engine.NewSession(p.GameId, user.Email, engine.DefaultConfig(), tiles, chance, chest, engine.Deps{
				Broadcast: cast,
				OnEmpty:   onEmpty,
			})
			registry.Put(sess)
		}

		if err := sess.AddPlayer(p.UserId, user.Email); err != nil {
			s.Emit("error-message", err.Error())
			s.Emit("failed")
			return
		}
		queries.CreatePlayer(models.Player{
			Game_id:  p.GameId,
			User_id:  p.UserId,
			Username: user.Email,
		}, db)

		conn := pool.Get()
		defer conn.Close()
		cache.HSET("sock."+s.ID(), "game_id", p.GameId, &conn)
		cache.HSET("sock."+s.ID(), "user_id", p.UserId, &conn)
		cache.SADD("room."+p.GameId+".members", p.UserId, &conn)

		s.Join(p.GameId)
		members, _ := cache.SCARD("room."+p.GameId+".members", &conn)
		server.BroadcastToRoom("/", p.GameId, "player-join")
		s.Emit("joined-game", members)
		log.WithFields(log.Fields{"room": p.GameId, "user": p.UserId}).Info("player joined")
	})

	server.OnEvent("/", "join-back", func(s socketio.Conn, jsonStr string) {
		p := parse(jsonStr)
		sess := session(p)
		if sess == nil {
			s.Emit("error-message", "Invalid game")
			return
		}
		if err := sess.Restore(p.OldId, p.UserId); err != nil {
			s.Emit("error-message", err.Error())
			return
		}
		conn := pool.Get()
		defer conn.Close()
		cache.HSET("sock."+s.ID(), "game_id", p.GameId, &conn)
		cache.HSET("sock."+s.ID(), "user_id", p.UserId, &conn)
		s.Join(p.GameId)
	})

	server.OnEvent("/", "add-bot", func(s socketio.Conn, jsonStr string) {
		p := parse(jsonStr)
		sess := session(p)
		if sess == nil {
			s.Emit("error-message", "Invalid game")
			return
		}
		name := p.Name
		if name == "" {
			name = "Bot " + pkg.RandString(4)
		}
		if err := sess.AddBot(uuid.NewV4().String(), name, engine.NewHeuristicAgent()); err != nil {
			s.Emit("error-message", err.Error())
		}
	})

	server.OnEvent("/", "start-game", func(s socketio.Conn, jsonStr string) {
		p := parse(jsonStr)
		sess := session(p)
		if sess == nil {
			s.Emit("error-message", "Invalid game")
			return
		}
		if err := sess.Start(p.UserId); err != nil {
			s.Emit("error-message", err.Error())
			return
		}
		if err := queries.SetGameStatus(p.GameId, "in progress", db); err != nil {
			log.Warn("failed updating game status: ", err)
		}
	})

	server.OnEvent("/", "leave-game", func(s socketio.Conn, jsonStr string) {
		p := parse(jsonStr)
		if sess, ok := registry.Get(p.GameId); ok {
			sess.Leave(p.UserId)
		}
		queries.DeletePlayer(p.UserId, p.GameId, db)
		conn := pool.Get()
		defer conn.Close()
		cache.SREM("room."+p.GameId+".members", p.UserId, &conn)
		cache.Del("sock."+s.ID(), &conn)
		s.Leave(p.GameId)
		server.BroadcastToRoom("/", p.GameId, "player-left")
	})

	server.OnEvent("/", "roll-dice", command(engine.ActionRoll))
	server.OnEvent("/", "request-buy", command(engine.ActionBuy))
	server.OnEvent("/", "decline-buy", command(engine.ActionDecline))
	server.OnEvent("/", "end-turn", command(engine.ActionEndTurn))
	server.OnEvent("/", "buy-house", command(engine.ActionBuild))
	server.OnEvent("/", "sell-house", command(engine.ActionSellHouse))
	server.OnEvent("/", "mortgage", command(engine.ActionMortgage))
	server.OnEvent("/", "unmortgage", command(engine.ActionUnmortgage))
	server.OnEvent("/", "sell-to-bank", command(engine.ActionLiquidate))
	server.OnEvent("/", "pay-out-jail", command(engine.ActionPayJailFine))
	server.OnEvent("/", "use-jail-card", command(engine.ActionUseJailCard))
	server.OnEvent("/", "create-trade", command(engine.ActionProposeTrade))
	server.OnEvent("/", "accept-trade", command(engine.ActionAcceptTrade))
	server.OnEvent("/", "counter-trade", command(engine.ActionCounterTrade))
	server.OnEvent("/", "reject-trade", command(engine.ActionRejectTrade))
	server.OnEvent("/", "cancel-trade", command(engine.ActionCancelTrade))
	server.OnEvent("/", "place-bid", command(engine.ActionPlaceBid))
	server.OnEvent("/", "complete-auction", command(engine.ActionCompleteAuction))
	server.OnEvent("/", "declare-bankruptcy", command(engine.ActionDeclareBankruptcy))
	server.OnEvent("/", "restart-game", command(engine.ActionRestart))
	server.OnEvent("/", "chat", command(engine.ActionChat))

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Warn("socket error: ", e)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		conn := pool.Get()
		defer conn.Close()
		gameId, err1 := cache.HGET("sock."+s.ID(), "game_id", &conn)
		userId, err2 := cache.HGET("sock."+s.ID(), "user_id", &conn)
		cache.Del("sock."+s.ID(), &conn)
		if err1 != nil || err2 != nil {
			return
		}
		if sess, ok := registry.Get(gameId); ok {
			sess.MarkAbsent(userId)
		}
		server.BroadcastToRoom("/", gameId, "player-left")
		s.LeaveAll()
	})

	go server.Serve()
	defer server.Close()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{os.Getenv("CORS_ORIGIN")},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	port := os.Getenv("SOCKET_PORT")
	if port == "" {
		port = "8000"
	}
	http.ListenAndServe(":"+port, c.Handler(mux))
}
