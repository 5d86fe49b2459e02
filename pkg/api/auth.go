package api

// RegisterRequest представляет запрос на регистрацию нового актора
type RegisterRequest struct {
	Actor          string `json:"actor"`           // идентификатор актора
	CredentialHash string `json:"credential_hash"` // Argon2id хеш пароля (hex-encoded)
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	Actor   string `json:"actor"`   // идентификатор актора
	Message string `json:"message"` // сообщение об успешной регистрации
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Actor          string `json:"actor"`           // идентификатор актора
	CredentialHash string `json:"credential_hash"` // Argon2id хеш пароля (hex-encoded)
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // refresh token
	ExpiresIn    int64  `json:"expires_in"`    // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
