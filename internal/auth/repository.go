package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type UserRepository interface {
	EnableTwoFactor(userID, method string) error
	GetTwoFactorSecret(userID string) (string, error)
	SaveTwoFactorSecret(userID string, encryptedSecret string) error
	DisableTwoFactor(userID string) error
	SaveLoginLink(tokenHash, userID string, expiresAt time.Time) error
	ConsumeLoginLink(tokenHash string) (string, error)
	DeleteExpiredLoginLinks() (int64, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) SaveTwoFactorSecret(userID string, encryptedSecret string) error {
	query := `
        INSERT INTO user_two_factor_secrets (user_id, encrypted_secret, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET encrypted_secret = EXCLUDED.encrypted_secret,
            created_at = NOW()
    `
	_, err := r.db.Exec(query, userID, encryptedSecret)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (r *userRepository) GetTwoFactorSecret(userID string) (string, error) {
	var encryptedSecret string
	query := `
        SELECT encrypted_secret
        FROM user_two_factor_secrets
        WHERE user_id = $1
    `
	err := r.db.QueryRow(query, userID).Scan(&encryptedSecret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUser2FANotEnabled
		}
		return "", ErrInternalError
	}
	return encryptedSecret, nil
}

func (r *userRepository) EnableTwoFactor(userID, method string) error {
	query := `
		UPDATE users
		SET two_factor_enabled = TRUE,
			two_factor_method = $1,
			updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(query, method, userID)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (r *userRepository) DisableTwoFactor(userID string) error {
	var twoFactorMethod string
	err := r.db.QueryRow(`SELECT two_factor_method FROM users WHERE id = $1`, userID).Scan(&twoFactorMethod)
	if err != nil {
		return fmt.Errorf("could not retrieve two-factor method: %v", err)
	}

	query := `
		UPDATE users
		SET two_factor_enabled = FALSE, two_factor_method = ''
		WHERE id = $1
	`
	_, err = r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("could not disable two-factor authentication in users table: %v", err)
	}

	if twoFactorMethod == google2FAAuthMethod {
		query = `
			DELETE FROM user_two_factor_secrets
			WHERE user_id = $1
		`
		_, err = r.db.Exec(query, userID)
		if err != nil {
			return fmt.Errorf("could not delete TOTP secret from user_two_factor_secrets table: %v", err)
		}
	}

	return nil
}

func (r *userRepository) SaveLoginLink(tokenHash, userID string, expiresAt time.Time) error {
	query := `
		INSERT INTO login_links (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.db.Exec(query, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("could not save login link: %v", err)
	}
	return nil
}

// ConsumeLoginLink deletes the link and returns its user in one statement so a
// link can never be redeemed twice.
func (r *userRepository) ConsumeLoginLink(tokenHash string) (string, error) {
	query := `
		DELETE FROM login_links
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING user_id
	`
	var userID string
	err := r.db.QueryRow(query, tokenHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidLoginLink
		}
		return "", ErrInternalError
	}
	return userID, nil
}

func (r *userRepository) DeleteExpiredLoginLinks() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM login_links WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("could not delete expired login links: %v", err)
	}
	return res.RowsAffected()
}
