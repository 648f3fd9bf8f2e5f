package queries

import (
	"github.com/go-pg/pg/v10"
	"github.com/tycoonhq/backend/app/models"
)

func VerifyGame(id string, db *pg.DB) bool {
	game := &models.Game{Id: id}
	err := db.Model(game).WherePK().Select()
	return err == nil
}

func GetUserData(userId string, db *pg.DB) (models.User, error) {
	user := models.User{Id: userId}
	err := db.Model(&user).WherePK().Select()
	return user, err
}

func CreatePlayer(player models.Player, db *pg.DB) error {
	_, err := db.Model(&player).Insert()
	return err
}

func DeletePlayer(userId string, gameId string, db *pg.DB) error {
	player := new(models.Player)
	_, err := db.Model(player).Where("user_id = ? and game_id = ?", userId, gameId).Delete()
	return err
}

func SetGameStatus(gameId string, status string, db *pg.DB) error {
	game := &models.Game{Id: gameId}
	_, err := db.Model(game).WherePK().Set("status = ?", status).Update()
	return err
}

// CleanupGame drops the room and its roster once the last party is gone.
func CleanupGame(gameId string, db *pg.DB) {
	player := new(models.Player)
	game := new(models.Game)
	db.Model(player).Where("game_id = ?", gameId).Delete()
	db.Model(game).Where("id = ?", gameId).Delete()
}
