package model

// User is the read-only slice of the account system this engine sees.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"` // e.g. "miner", "seller", "admin"
}
