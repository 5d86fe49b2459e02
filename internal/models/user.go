package models

import "time"

// Account представляет учетную запись актора на сервере
type Account struct {
	CreatedAt      time.Time  `json:"created_at"`      // время создания
	LastLogin      *time.Time `json:"last_login"`      // время последнего входа
	ActorID        ID         `json:"actor_id"`        // идентификатор актора
	CredentialHash string     `json:"credential_hash"` // bcrypt хеш от credential hash клиента
}

// RefreshToken представляет refresh token сессии актора
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	Token     string    `json:"token"`      // значение токена
	ActorID   ID        `json:"actor_id"`   // актор, которому выдан токен
}

// IsExpired reports whether the token is no longer valid at now
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
