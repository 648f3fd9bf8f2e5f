package board

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tycoonhq/backend/app/models"
)

//go:embed tiles.json
var tilesJSON []byte

//go:embed cards.json
var cardsJSON []byte

// BoardSize is the tile count every board served by this provider must have.
const BoardSize = 40

// corner positions are fixed across all boards
const (
	StartPos    = 0
	JailPos     = 10
	VacationPos = 20
	GoToJailPos = 30
)

// Build returns the tile sequence for a map id or a custom definition. Pass
// def == nil to get the named built-in map ("classic" is the only one today).
func Build(mapId string, def *models.BoardDef) ([]models.TileDef, error) {
	if def != nil {
		if err := Validate(def); err != nil {
			return nil, err
		}
		return def.Tiles, nil
	}
	if mapId != "" && mapId != "classic" {
		return nil, fmt.Errorf("unknown map %q", mapId)
	}
	var tiles []models.TileDef
	if err := json.Unmarshal(tilesJSON, &tiles); err != nil {
		panic(err)
	}
	return tiles, nil
}

// Validate checks a submitted board definition: declared size, contiguous
// ids, and the four fixed corner tiles in their compass positions.
func Validate(def *models.BoardDef) error {
	if def.Size != BoardSize {
		return fmt.Errorf("board size must be %d, got %d", BoardSize, def.Size)
	}
	if len(def.Tiles) != def.Size {
		return fmt.Errorf("declared size %d but %d tiles", def.Size, len(def.Tiles))
	}
	corners := map[int]string{
		StartPos:    "start",
		JailPos:     "jail",
		VacationPos: "vacation",
		GoToJailPos: "go-to-jail",
	}
	for i, tile := range def.Tiles {
		if tile.Id != i {
			return fmt.Errorf("tile %d has id %d", i, tile.Id)
		}
		if want, ok := corners[i]; ok && tile.Type != want {
			return fmt.Errorf("tile %d must be %q, got %q", i, want, tile.Type)
		}
		if tile.Type == "property" && len(tile.Rent) != 6 {
			return fmt.Errorf("tile %d needs a 6-entry rent schedule", i)
		}
	}
	return nil
}

// LoadCards returns the two deck definitions.
func LoadCards() (chance []models.CardDef, chest []models.CardDef) {
	var cards []models.CardDef
	if err := json.Unmarshal(cardsJSON, &cards); err != nil {
		panic(err)
	}
	for _, card := range cards {
		if card.Deck == "chance" {
			chance = append(chance, card)
		} else {
			chest = append(chest, card)
		}
	}
	return chance, chest
}

// GetByPos looks a tile up by position. O(N) like the rest of this package.
func GetByPos(pos int, tiles []models.TileDef) (models.TileDef, error) {
	for _, tile := range tiles {
		if tile.Id == pos {
			return tile, nil
		}
	}
	return models.TileDef{}, errors.New("not found")
}

// GroupTiles returns the ids of every tile sharing a group key.
func GroupTiles(group string, tiles []models.TileDef) []int {
	var ids []int
	for _, tile := range tiles {
		if tile.Group != "" && tile.Group == group {
			ids = append(ids, tile.Id)
		}
	}
	return ids
}
