package user

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrNoTwoFactorCodeGenerated = errors.New("no two-factor authentication code generated")
)

type Repository interface {
	createUser(user *User) error
	getUserByEmail(email string) (*User, error)
	getUserByLogin(login string) (*User, error)
	userExistsByLoginOrEmail(login, email string) (*User, error)
	getUserByLoginOrEmail(loginOrEmail string) (*User, error)
	getUserByID(id string) (*User, error)
	getUserByGoogleID(googleID string) (*User, error)
	linkGoogleID(userID, googleID string) error
	saveEmailVerificationCode(userID string, code string, expiresAt time.Time, codeType string) error
	updateEmailVerified(userID string, verified bool) error
	getEmailVerificationCode(userID string) (string, string, time.Time, time.Time, error)
	deleteEmailTwoFactorCode(userID string) error
	updateUserPasswordAndHashToken(userID, newPasswordHash, newHashToken string) error
	deleteExpiredEmailVerificationCodes() (int64, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `id, email, login, password_hash, COALESCE(google_id, ''), two_factor_enabled, is_verified, two_factor_method, hash_token, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Login, &user.PasswordHash, &user.GoogleID, &user.TwoFactorEnabled, &user.IsActive, &user.TwoFactorMethod, &user.HashToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %v", err)
	}
	return &user, nil
}

func (r *userRepository) createUser(user *User) error {
	query := `
		INSERT INTO users (email, login, password_hash, google_id, is_verified, two_factor_enabled, two_factor_method, hash_token, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NOW(), NOW())
		RETURNING id;
	`
	var id string
	err := r.db.QueryRow(query, user.Email, user.Login, user.PasswordHash, user.GoogleID, user.IsActive, user.TwoFactorEnabled, user.TwoFactorMethod, user.HashToken).Scan(&id)
	if err != nil {
		return fmt.Errorf("could not create user: %v", err)
	}

	user.ID = id
	return nil
}

func (r *userRepository) getUserByEmail(email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(query, email))
}

func (r *userRepository) getUserByLogin(login string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1`
	return scanUser(r.db.QueryRow(query, login))
}

func (r *userRepository) userExistsByLoginOrEmail(login, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 OR email = $2`
	return scanUser(r.db.QueryRow(query, login, email))
}

func (r *userRepository) getUserByLoginOrEmail(loginOrEmail string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 OR email = $1`
	return scanUser(r.db.QueryRow(query, loginOrEmail))
}

func (r *userRepository) getUserByID(id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(query, id))
}

func (r *userRepository) getUserByGoogleID(googleID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return scanUser(r.db.QueryRow(query, googleID))
}

func (r *userRepository) linkGoogleID(userID, googleID string) error {
	query := `UPDATE users SET google_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(query, googleID, userID)
	if err != nil {
		return fmt.Errorf("could not link google account: %v", err)
	}
	return nil
}

func (r *userRepository) saveEmailVerificationCode(userID string, code string, expiresAt time.Time, codeType string) error {
	query := `
		INSERT INTO user_email_verification_codes (user_id, code, code_type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET code = EXCLUDED.code,
		    code_type = EXCLUDED.code_type,
		    expires_at = EXCLUDED.expires_at,
		    created_at = NOW()
	`
	_, err := r.db.Exec(query, userID, code, codeType, expiresAt)
	if err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}
	return nil
}

func (r *userRepository) updateEmailVerified(userID string, verified bool) error {
	query := `UPDATE users SET is_verified = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(query, verified, userID)
	if err != nil {
		return fmt.Errorf("could not update verification status: %v", err)
	}
	return nil
}

func (r *userRepository) getEmailVerificationCode(userID string) (string, string, time.Time, time.Time, error) {
	query := `
		SELECT code, code_type, expires_at, created_at
		FROM user_email_verification_codes
		WHERE user_id = $1
	`
	var code, codeType string
	var expiresAt, createdAt time.Time
	err := r.db.QueryRow(query, userID).Scan(&code, &codeType, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", time.Time{}, time.Time{}, ErrNoTwoFactorCodeGenerated
		}
		return "", "", time.Time{}, time.Time{}, fmt.Errorf("could not get verification code: %v", err)
	}
	return code, codeType, expiresAt, createdAt, nil
}

func (r *userRepository) deleteEmailTwoFactorCode(userID string) error {
	query := `DELETE FROM user_email_verification_codes WHERE user_id = $1`
	_, err := r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("could not delete verification code: %v", err)
	}
	return nil
}

func (r *userRepository) updateUserPasswordAndHashToken(userID, newPasswordHash, newHashToken string) error {
	query := `UPDATE users SET password_hash = $1, hash_token = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.Exec(query, newPasswordHash, newHashToken, userID)
	if err != nil {
		return fmt.Errorf("could not update password: %v", err)
	}
	return nil
}

func (r *userRepository) deleteExpiredEmailVerificationCodes() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM user_email_verification_codes WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("could not delete expired verification codes: %v", err)
	}
	return res.RowsAffected()
}
