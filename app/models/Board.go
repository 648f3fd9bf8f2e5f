package models

// TileDef is the static definition of one board tile as authored in the
// board JSON. Runtime ownership state lives in the engine, not here.
type TileDef struct {
	Id        int    `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"` // "property" | "transit" | "utility" | "tax" | "chance" | "chest" | "start" | "jail" | "go-to-jail" | "vacation"
	Group     string `json:"group"`
	Price     int    `json:"price"`
	Rent      []int  `json:"rent"` // base, 1..4 houses, hotel
	HouseCost int    `json:"housecost"`
}

// CardDef is one entry of the chance or chest deck.
type CardDef struct {
	Id     int    `json:"id"`
	Deck   string `json:"deck"` // "chance" | "chest"
	Text   string `json:"text"`
	Effect string `json:"effect"` // "move" | "advance" | "collect" | "pay" | "collect-each" | "pay-each" | "repairs" | "jail" | "jail-card"
	Amount int    `json:"amount"`
	Dest   int    `json:"dest"`
}

// BoardDef is a custom board definition submitted over the API. Size declares
// the tile count the Tiles list must match.
type BoardDef struct {
	Size  int       `json:"size"`
	Tiles []TileDef `json:"tiles"`
}
