package models

// User is the pg account record. Password holds the bcrypt hash and never
// leaves the server.
type User struct {
	Id       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

type UserDto struct {
	Email string `json:"email"`
	Pass  string `json:"pass"`
}
