package user

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	emailService "github.com/spendwise-app/spendwise/internal/email"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxEmailLength     = 255
	minEmailLength     = 3
	maxLoginLength     = 30
	minLoginLength     = 5
	bcryptCost         = 12
	defaultCodeTimeout = 2
	CodeVerifyType     = "verify"
)

var (
	ErrInvalidEmail             = fmt.Errorf("email address is not valid")
	ErrEmailLength              = fmt.Errorf("email address is too long or too short, max length: %d, min length: %d", maxEmailLength, minEmailLength)
	ErrLoginLength              = fmt.Errorf("login is too long or too short, max length: %d, min length: %d", maxLoginLength, minLoginLength)
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrInternalError            = errors.New("internal Server Error")
	ErrLoginAlreadyExists       = errors.New("login already exists")
	ErrUserAlreadyVerified      = errors.New("user already verified")
	ErrInvalidVerificationCode  = errors.New("invalid verification code")
	ErrVerificationCodeExpired  = errors.New("verification code expired")
	ErrTooManyEmailCodeRequests = errors.New("too many email code requests")
	ErrInvalidOldPassword       = errors.New("invalid old password")
	ErrPasswordLoginNotAllowed  = errors.New("password login is not enabled for this account")
)

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Login            string    `json:"login"`
	PasswordHash     string    `json:"-"`
	GoogleID         string    `json:"-"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	TwoFactorMethod  string    `json:"two_factor_method"`
	HashToken        string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	IsActive         bool      `json:"is_active"`
}

type Service interface {
	Register(email, login, password string) (*User, error)
	VerifyRegistrationCode(email, code string) error
	GetUserByID(userID string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	GetUserByLoginOrEmail(loginOrEmail string) (*User, error)
	FindOrCreateGoogleUser(googleID, email string) (*User, error)
	SendVerificationCode(user *User) error
	ReSendVerificationCode(user *User) error
	SaveEmailVerificationCode(userID string, code string, expiresAt time.Time, codeType string) error
	GetEmailVerificationCode(userID string) (string, string, time.Time, time.Time, error)
	DeleteEmailTwoFactorCode(userID string) error
	ChangePasswordWithOldPassword(userID, oldPassword, newPassword string) error
	ResetPassword(userID, newPassword string) error
	PruneExpiredVerificationCodes() (int64, error)
}

type service struct {
	repo         Repository
	emailService emailService.EmailSender
}

func NewUserService(repo Repository, emailService emailService.EmailSender) Service {
	return &service{
		repo:         repo,
		emailService: emailService,
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func doPasswordsMatch(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

func GenerateVerificationCode() (string, error) {
	code := make([]byte, 6)
	_, err := rand.Read(code)
	if err != nil {
		return "", fmt.Errorf("could not generate verification code: %v", err)
	}
	for i := range code {
		code[i] = '0' + (code[i] % 10)
	}

	return string(code), nil
}

func generateHashToken() (string, error) {
	token := make([]byte, 32)
	_, err := rand.Read(token)
	if err != nil {
		return "", fmt.Errorf("could not generate hash token: %v", err)
	}
	return hex.EncodeToString(token), nil
}

func validateEmailAddress(email string) error {
	err := checkmail.ValidateFormat(email)
	if err != nil {
		fmt.Println("Email Validation FORMAT check error")
		return ErrInvalidEmail
	}

	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		fmt.Println("Email Validation length check error")
		return ErrEmailLength
	}
	return nil
}

func (s *service) Register(email, login, password string) (*User, error) {
	err := validateEmailAddress(email)
	if err != nil {
		return nil, err
	}

	if len(login) == 0 {
		parts := strings.Split(email, "@")
		if len(parts) < 2 {
			return nil, ErrInvalidEmail
		}
		login = parts[0]
	} else if len(login) > maxLoginLength || len(login) < minLoginLength {
		fmt.Println("Login Validation length check error")
		return nil, ErrLoginLength
	}

	existingUser, err := s.repo.userExistsByLoginOrEmail(login, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		fmt.Println("Error with database request")
		return nil, ErrInternalError
	}

	if existingUser != nil {
		if existingUser.Login == login {
			return nil, ErrLoginAlreadyExists
		} else if existingUser.Email == email {
			return nil, ErrEmailAlreadyExists
		}
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		fmt.Println("Error during hashing the password")
		return nil, ErrInternalError
	}

	hashToken, err := generateHashToken()
	if err != nil {
		fmt.Println("Error during generating a hashToken")
		return nil, ErrInternalError
	}

	user := &User{
		Email:        email,
		Login:        login,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
	}

	err = s.repo.createUser(user)
	if err != nil {
		fmt.Println("Error during creating the user: ", err)
		return nil, ErrInternalError
	}

	err = s.SendVerificationCode(user)
	if err != nil {
		fmt.Println("Error during sending verification email: ", err)
		return nil, ErrInternalError
	}

	return user, nil
}

// FindOrCreateGoogleUser resolves a federated Google identity to a local user,
// linking by email when the account already exists and provisioning a new,
// already-verified user otherwise.
func (s *service) FindOrCreateGoogleUser(googleID, email string) (*User, error) {
	existingUser, err := s.repo.getUserByGoogleID(googleID)
	if err == nil {
		return existingUser, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, ErrInternalError
	}

	existingUser, err = s.repo.getUserByEmail(email)
	if err == nil {
		if err := s.repo.linkGoogleID(existingUser.ID, googleID); err != nil {
			fmt.Println("Error linking google account: ", err)
			return nil, ErrInternalError
		}
		existingUser.GoogleID = googleID
		return existingUser, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, ErrInternalError
	}

	login := strings.Split(email, "@")[0]
	if len(login) < minLoginLength {
		login = login + "-user"
	}
	if _, err := s.repo.getUserByLogin(login); err == nil {
		suffix, err := GenerateVerificationCode()
		if err != nil {
			return nil, ErrInternalError
		}
		login = login + suffix[:4]
	}

	hashToken, err := generateHashToken()
	if err != nil {
		return nil, ErrInternalError
	}

	user := &User{
		Email:     email,
		Login:     login,
		GoogleID:  googleID,
		HashToken: hashToken,
		IsActive:  true,
	}
	err = s.repo.createUser(user)
	if err != nil {
		fmt.Println("Error during creating the google user: ", err)
		return nil, ErrInternalError
	}
	// the identity provider already verified the email address
	err = s.repo.updateEmailVerified(user.ID, true)
	if err != nil {
		return nil, ErrInternalError
	}
	return user, nil
}

func (s *service) SendVerificationCode(user *User) error {
	newCode, err := GenerateVerificationCode()
	if err != nil {
		return fmt.Errorf("could not generate verification code: %v", err)
	}

	expirationTime := time.Now().Add(10 * time.Minute).UTC()
	err = s.repo.saveEmailVerificationCode(user.ID, newCode, expirationTime, CodeVerifyType)
	if err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}

	s.emailService.QueueEmail(user.Email, emailService.RegistrationConfirmationData{
		UserName: user.Login,
		Code:     newCode,
	})

	return nil
}

func (s *service) ReSendVerificationCode(user *User) error {
	_, _, _, createdAt, err := s.repo.getEmailVerificationCode(user.ID)
	if err != nil {
		if errors.Is(err, ErrNoTwoFactorCodeGenerated) {
			return s.SendVerificationCode(user)
		}
		return ErrInternalError
	}

	timeSinceLastCode := time.Now().UTC().Sub(createdAt.UTC())
	if timeSinceLastCode.Minutes() < defaultCodeTimeout {
		return ErrTooManyEmailCodeRequests
	}

	return s.SendVerificationCode(user)
}

func (s *service) VerifyRegistrationCode(email, code string) error {
	user, err := s.repo.getUserByEmail(email)
	if err != nil {
		fmt.Println("Error getting user from db with email, ", email, err)
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if user.IsActive {
		return ErrUserAlreadyVerified
	}

	storedCode, codeType, expiryTime, _, err := s.repo.getEmailVerificationCode(user.ID)
	if err != nil {
		fmt.Println("cannot get code from db")
		return ErrInvalidVerificationCode
	}

	if codeType != CodeVerifyType {
		return ErrInvalidVerificationCode
	}

	if storedCode != code {
		fmt.Println("invalid verification code")
		return ErrInvalidVerificationCode
	}

	if time.Now().UTC().After(expiryTime) {
		fmt.Println("invalid verification code - code expired")
		return ErrVerificationCodeExpired
	}

	err = s.repo.updateEmailVerified(user.ID, true)
	if err != nil {
		fmt.Println("issue during updating verified account")
		return ErrInternalError
	}

	return s.repo.deleteEmailTwoFactorCode(user.ID)
}

func (s *service) ChangePasswordWithOldPassword(userID, oldPassword, newPassword string) error {
	user, err := s.repo.getUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if user.PasswordHash == "" {
		return ErrPasswordLoginNotAllowed
	}

	if !doPasswordsMatch(user.PasswordHash, oldPassword) {
		return ErrInvalidOldPassword
	}

	return s.changePassword(userID, newPassword)
}

func (s *service) changePassword(userID, newPassword string) error {
	newPasswordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %v", err)
	}

	// rotating the hash token invalidates every outstanding refresh token
	newHashToken, err := generateHashToken()
	if err != nil {
		return fmt.Errorf("could not generate hash token: %v", err)
	}

	return s.repo.updateUserPasswordAndHashToken(userID, newPasswordHash, newHashToken)
}

func (s *service) ResetPassword(userID, newPassword string) error {
	return s.changePassword(userID, newPassword)
}

func (s *service) GetUserByID(userID string) (*User, error) {
	return s.repo.getUserByID(userID)
}

func (s *service) GetUserByEmail(email string) (*User, error) {
	return s.repo.getUserByEmail(email)
}

func (s *service) GetUserByLoginOrEmail(loginOrEmail string) (*User, error) {
	return s.repo.getUserByLoginOrEmail(loginOrEmail)
}

func (s *service) SaveEmailVerificationCode(userID string, code string, expiresAt time.Time, codeType string) error {
	return s.repo.saveEmailVerificationCode(userID, code, expiresAt, codeType)
}

func (s *service) GetEmailVerificationCode(userID string) (string, string, time.Time, time.Time, error) {
	return s.repo.getEmailVerificationCode(userID)
}

func (s *service) DeleteEmailTwoFactorCode(userID string) error {
	return s.repo.deleteEmailTwoFactorCode(userID)
}

func (s *service) PruneExpiredVerificationCodes() (int64, error) {
	return s.repo.deleteExpiredEmailVerificationCodes()
}
