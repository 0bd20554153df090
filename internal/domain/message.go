package domain

import "time"

const (
	RoleUser      = "user"
	RoleCompanion = "companion"
)

type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
