package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential возвращается при несовпадении credential hash
var ErrInvalidCredential = errors.New("invalid credential")

// Параметры Argon2id для получения credential hash из пароля
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4
	// Argon2KeyLen - длина выходного ключа в байтах
	Argon2KeyLen = 32
)

// credentialContext отделяет соль credential hash от других применений SHA256(actor)
const credentialContext = "gophsync/credential/"

// DeriveCredentialHash derives the credential hash a client sends to the
// server instead of the password. The salt is derived from the actor id, so
// the same password and actor always give the same hash.
func DeriveCredentialHash(password, actor string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	if actor == "" {
		return "", fmt.Errorf("actor cannot be empty")
	}

	salt := sha256.Sum256([]byte(credentialContext + actor))
	key := argon2.IDKey([]byte(password), salt[:], Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)

	return hex.EncodeToString(key), nil
}

// HashCredential хеширует credential hash клиента для хранения на сервере (bcrypt)
func HashCredential(credentialHash string) (string, error) {
	if credentialHash == "" {
		return "", fmt.Errorf("credential hash cannot be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credentialHash), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}

	return string(hashed), nil
}

// VerifyCredential проверяет credential hash клиента по сохраненному bcrypt хешу
func VerifyCredential(credentialHash, stored string) error {
	if credentialHash == "" {
		return fmt.Errorf("credential hash cannot be empty")
	}
	if stored == "" {
		return fmt.Errorf("stored hash cannot be empty")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(credentialHash)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredential
		}
		return fmt.Errorf("failed to verify credential: %w", err)
	}

	return nil
}
