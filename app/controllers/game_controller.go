package controllers

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/tycoonhq/backend/app/models"
	"github.com/tycoonhq/backend/pkg"
	"github.com/tycoonhq/backend/platform/board"
	"github.com/tycoonhq/backend/platform/database"
)

func CreateGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	game := &models.Game{
		Id:     pkg.RandString(8),
		Name:   gameCreateDto.Name,
		Status: "waiting",
		Map:    gameCreateDto.Map,
	}

	if _, err := db.Model(game).Insert(); err != nil {
		log.Warn("failed creating game: ", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{"id": game.Id})
}

func GetAllAvailGames(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	var games []models.Game
	if err := db.Model(&games).Where("status = ?", "waiting").Select(); err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(games)
}

func VerifyGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	game := &models.Game{Id: verifyGameDto.Code}
	if err := db.Model(game).WherePK().Select(); err != nil {
		return c.JSON(fiber.Map{"status": false})
	}
	return c.JSON(fiber.Map{"status": true})
}

// ValidateBoard checks a custom board definition without creating anything.
func ValidateBoard(c *fiber.Ctx) error {
	def := new(models.BoardDef)
	if err := c.BodyParser(def); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if err := board.Validate(def); err != nil {
		return c.Status(422).JSON(fiber.Map{"valid": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"valid": true})
}
