package models

type Game struct {
	Id     string
	Name   string
	Status string // "waiting" | "in progress" | "done"
	Map    string
}

type GameCreateDto struct {
	Name string
	Map  string
}

type VerifyGameDto struct {
	Code    string
	User_id string
}
