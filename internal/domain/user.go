package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subscription es la suscripcion vigente segun el procesador de pagos. Se lee
// fresca en cada gate check; nunca se cachea entre requests.
type Subscription struct {
	UserID    string           `json:"user_id"`
	Tier      SubscriptionTier `json:"tier"`
	UpdatedAt time.Time        `json:"updated_at"`
}
