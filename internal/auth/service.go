package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	emailService "github.com/spendwise-app/spendwise/internal/email"
	"github.com/spendwise-app/spendwise/internal/user"
	"golang.org/x/crypto/bcrypt"
)

const (
	google2FAAuthMethod = "google_authenticator"
	email2FAAuthMethod  = "email"
	defaultCodeTimeout  = 2
	CodeVerifyType      = "verify"
	Code2FAType         = "2fa"
	CodePassType        = "password"

	defaultLoginLinkDuration = 15 * time.Minute
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInternalError            = errors.New("internal Server Error")
	ErrInvalidTwoFactorMethod   = errors.New("two factor auth method not supported")
	ErrUser2FANotEnabled        = errors.New("two factor auth is not enabled")
	ErrInvalid2FACode           = errors.New("2fa code is invalid")
	ErrUser2FAAlreadyEnabled    = errors.New("2fa auth already enabled")
	ErrInvalidVerificationCode  = errors.New("invalid verification code")
	ErrVerificationCodeExpired  = errors.New("verification code expired")
	ErrUserNotVerified          = errors.New("user has not been verified")
	ErrTooManyEmailCodeRequests = errors.New("too many email code requests")
	ErrInvalidCodeType          = errors.New("invalid code type")
	ErrInvalidLoginLink         = errors.New("login link is invalid or expired")
)

type Service interface {
	Login(emailOrLogin, password string) (*user.User, string, string, error)
	VerifyTwoFactor(sessionToken, code string) (*user.User, string, string, error)
	RegisterTwoFactor(userID string, method string) (string, error)
	VerifyTwoFactorCode(userID, method, code string) error
	DisableTwoFactorAuth(userID, method, verificationCode string) error
	RequestEmail2FACode(userID string) error
	RefreshAccessToken(refreshToken string) (string, string, error)
	RequestLoginLink(email string) error
	RedeemLoginLink(token string) (*user.User, string, string, error)
	GoogleAuthURL(state string) (string, error)
	GoogleLogin(ctx context.Context, code string) (*user.User, string, string, error)
	RequestPasswordReset(email string) error
	ResetPassword(email, code, newPassword string) error
	SendEmailCode(user *user.User, codeType string) error
	PruneExpiredLoginLinks() (int64, error)
	JWTRefreshTokenMiddleware() func(http.Handler) http.Handler
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	repo           UserRepository
	userService    user.Service
	sessionManager SessionManagerInterface
	jwtManager     JWTManagerInterface
	emailService   emailService.EmailSender
	authenticator  Authenticator
	google         GoogleOAuthProvider
	appBaseURL     string
}

func NewAuthService(repo UserRepository, userService user.Service, sessionManager SessionManagerInterface, jwtManager JWTManagerInterface, emailService emailService.EmailSender, authenticator Authenticator, google GoogleOAuthProvider) Service {
	return &service{
		repo:           repo,
		userService:    userService,
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		emailService:   emailService,
		authenticator:  authenticator,
		google:         google,
		appBaseURL:     os.Getenv("APP_BASE_URL"),
	}
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

func doPasswordsMatch(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

func hashLoginLinkToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *service) issueTokens(existingUser *user.User) (string, string, error) {
	jwtToken, err := s.jwtManager.GenerateAccessJWT(existingUser.ID, defaultJWTDuration)
	if err != nil {
		fmt.Println("error during JWT generation")
		return "", "", ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(existingUser.ID, existingUser.HashToken, defaultJWTRefreshDuration)
	if err != nil {
		fmt.Println("error during refresh token generation")
		return "", "", ErrInternalError
	}
	return jwtToken, refreshToken, nil
}

func (s *service) SendEmailCode(user *user.User, codeType string) error {
	_, storedCodeType, _, createdAt, err := s.userService.GetEmailVerificationCode(user.ID)
	if err == nil && storedCodeType != "" {
		timeSinceLastCode := time.Now().UTC().Sub(createdAt.UTC())
		if timeSinceLastCode.Minutes() < defaultCodeTimeout && storedCodeType == codeType {
			return ErrTooManyEmailCodeRequests
		}
	}

	newCode, err := GenerateVerificationCode()
	if err != nil {
		return fmt.Errorf("could not generate verification code: %v", err)
	}

	expirationTime := time.Now().UTC().Add(10 * time.Minute)
	err = s.userService.SaveEmailVerificationCode(user.ID, newCode, expirationTime, codeType)
	if err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}

	switch codeType {
	case Code2FAType:
		s.emailService.QueueEmail(user.Email, emailService.TwoFactorCodeData{
			UserName: user.Login,
			Code:     newCode,
		})
	case CodePassType:
		s.emailService.QueueEmail(user.Email, emailService.ResetPasswordData{
			UserName: user.Login,
			Code:     newCode,
		})
	case CodeVerifyType:
		s.emailService.QueueEmail(user.Email, emailService.RegistrationConfirmationData{
			UserName: user.Login,
			Code:     newCode,
		})
	default:
		fmt.Println("codeType is not supported in email service - email hasn't been sent")
	}

	return nil
}

func (s *service) Login(emailOrLogin, password string) (*user.User, string, string, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(emailOrLogin)
	if err != nil {
		fmt.Println("error when getting user from database: ", err)
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", ErrInternalError
	}

	if !existingUser.IsActive {
		err := s.SendEmailCode(existingUser, CodeVerifyType)
		if err != nil && !errors.Is(err, ErrTooManyEmailCodeRequests) {
			return nil, "", "", ErrInternalError
		}
		return nil, "", "", ErrUserNotVerified
	}

	// accounts provisioned through Google have no password
	if existingUser.PasswordHash == "" || !doPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, "", "", ErrInvalidCredentials
	}

	if existingUser.TwoFactorEnabled {
		switch existingUser.TwoFactorMethod {
		case email2FAAuthMethod:
			err = s.SendEmailCode(existingUser, Code2FAType)
			if err != nil && !errors.Is(err, ErrTooManyEmailCodeRequests) {
				fmt.Println("Error during sending verification email: ", err)
				return nil, "", "", ErrInternalError
			}
		case google2FAAuthMethod:
			// authenticator app has the code, nothing to send
		default:
			return nil, "", "", ErrInvalidTwoFactorMethod
		}
		sessionToken, err := s.sessionManager.GenerateSessionToken(existingUser.ID, defaultSessionTokenDuration)
		if err != nil {
			return nil, "", "", ErrInternalError
		}
		return existingUser, sessionToken, "", nil
	}

	jwtToken, refreshToken, err := s.issueTokens(existingUser)
	if err != nil {
		return nil, "", "", err
	}

	return existingUser, jwtToken, refreshToken, nil
}

func (s *service) VerifyTwoFactor(sessionToken, code string) (*user.User, string, string, error) {
	userID, err := s.sessionManager.VerifySessionToken(sessionToken)
	if err != nil {
		return nil, "", "", err
	}
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrUserNotFound
		}
		return nil, "", "", ErrInternalError
	}
	if !existingUser.TwoFactorEnabled {
		return nil, "", "", ErrUser2FANotEnabled
	}

	var valid bool
	switch existingUser.TwoFactorMethod {
	case email2FAAuthMethod:
		storedCode, codeType, expiryTime, _, err := s.userService.GetEmailVerificationCode(userID)
		if err != nil {
			return nil, "", "", ErrInvalidVerificationCode
		}
		if codeType != Code2FAType {
			return nil, "", "", ErrInvalidCodeType
		}
		if storedCode != code {
			return nil, "", "", ErrInvalidVerificationCode
		}
		if time.Now().UTC().After(expiryTime) {
			return nil, "", "", ErrVerificationCodeExpired
		}
		valid = true
		err = s.userService.DeleteEmailTwoFactorCode(userID)
		if err != nil {
			return nil, "", "", ErrInternalError
		}
	case google2FAAuthMethod:
		encryptedSecret, err := s.repo.GetTwoFactorSecret(userID)
		if err != nil {
			return nil, "", "", err
		}
		valid = s.authenticator.VerifyCode(encryptedSecret, code)
	default:
		return nil, "", "", ErrInvalidTwoFactorMethod
	}

	if !valid {
		return nil, "", "", ErrInvalid2FACode
	}

	s.sessionManager.DeleteSessionToken(sessionToken)

	jwtToken, refreshToken, err := s.issueTokens(existingUser)
	if err != nil {
		return nil, "", "", err
	}

	return existingUser, jwtToken, refreshToken, nil
}

func (s *service) RegisterTwoFactor(userID string, method string) (string, error) {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", ErrInternalError
	}

	if existingUser.TwoFactorEnabled {
		return "", ErrUser2FAAlreadyEnabled
	}

	switch method {
	case email2FAAuthMethod:
		err := s.SendEmailCode(existingUser, Code2FAType)
		if err != nil {
			fmt.Println("Error during sending verification email: ", err)
			return "", ErrInternalError
		}
	case google2FAAuthMethod:
		otpURI, secret, err := s.authenticator.GenerateSecret(existingUser.Email)
		if err != nil {
			return "", ErrInternalError
		}
		err = s.repo.SaveTwoFactorSecret(userID, secret)
		if err != nil {
			return "", ErrInternalError
		}

		return otpURI, nil
	default:
		return "", ErrInvalidTwoFactorMethod
	}
	return "", nil
}

func (s *service) VerifyTwoFactorCode(userID, method, code string) error {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if existingUser.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}

	switch method {
	case email2FAAuthMethod:
		storedCode, codeType, expiryTime, _, err := s.userService.GetEmailVerificationCode(userID)
		if err != nil {
			return ErrInvalidVerificationCode
		}
		if codeType != Code2FAType {
			return ErrInvalidCodeType
		}
		if storedCode != code {
			return ErrInvalidVerificationCode
		}
		if time.Now().UTC().After(expiryTime) {
			return ErrVerificationCodeExpired
		}
		err = s.userService.DeleteEmailTwoFactorCode(userID)
		if err != nil {
			return ErrInternalError
		}
	case google2FAAuthMethod:
		secret, err := s.repo.GetTwoFactorSecret(userID)
		if err != nil {
			return ErrInternalError
		}
		if !s.authenticator.VerifyCode(secret, code) {
			return ErrInvalid2FACode
		}
	default:
		return ErrInvalidTwoFactorMethod
	}

	err = s.repo.EnableTwoFactor(userID, method)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (s *service) DisableTwoFactorAuth(userID, method, verificationCode string) error {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}

	if existingUser.TwoFactorMethod != method {
		return ErrInvalidTwoFactorMethod
	}

	switch existingUser.TwoFactorMethod {
	case google2FAAuthMethod:
		secret, err := s.repo.GetTwoFactorSecret(userID)
		if err != nil {
			return ErrInternalError
		}

		if !s.authenticator.VerifyCode(secret, verificationCode) {
			return ErrInvalid2FACode
		}
	case email2FAAuthMethod:
		storedCode, codeType, expiryTime, _, err := s.userService.GetEmailVerificationCode(userID)
		if err != nil {
			return err
		}
		if codeType != Code2FAType {
			return ErrInvalidCodeType
		}
		if storedCode != verificationCode {
			return ErrInvalid2FACode
		}
		if time.Now().UTC().After(expiryTime) {
			return ErrVerificationCodeExpired
		}

		err = s.userService.DeleteEmailTwoFactorCode(userID)
		if err != nil {
			return ErrInternalError
		}
	default:
		return ErrInvalidTwoFactorMethod
	}

	err = s.repo.DisableTwoFactor(userID)
	if err != nil {
		return ErrInternalError
	}

	return nil
}

func (s *service) RequestEmail2FACode(userID string) error {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}

	if existingUser.TwoFactorMethod != email2FAAuthMethod {
		return ErrInvalidTwoFactorMethod
	}

	err = s.SendEmailCode(existingUser, Code2FAType)
	if err != nil {
		if errors.Is(err, ErrTooManyEmailCodeRequests) {
			return err
		}
		fmt.Println("Error during sending verification email: ", err)
		return ErrInternalError
	}
	return nil
}

func (s *service) RefreshAccessToken(refreshToken string) (string, string, error) {
	userID, err := s.jwtManager.ExtractUserIDFromRefreshToken(refreshToken)
	if err != nil {
		return "", "", ErrInvalidJWTRefreshToken
	}

	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", ErrInternalError
	}

	err = s.jwtManager.ValidateRefreshToken(refreshToken, existingUser.HashToken)
	if err != nil {
		return "", "", ErrInvalidJWTRefreshToken
	}

	return s.issueTokens(existingUser)
}

// RequestLoginLink emails a single-use sign-in link. An unknown email is not
// reported to the caller.
func (s *service) RequestLoginLink(email string) error {
	existingUser, err := s.userService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			fmt.Println("login link requested for unknown email")
			return nil
		}
		return ErrInternalError
	}

	if !existingUser.IsActive {
		return ErrUserNotVerified
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return ErrInternalError
	}
	token := hex.EncodeToString(tokenBytes)

	expiresAt := time.Now().UTC().Add(defaultLoginLinkDuration)
	err = s.repo.SaveLoginLink(hashLoginLinkToken(token), existingUser.ID, expiresAt)
	if err != nil {
		fmt.Println("Error saving login link: ", err)
		return ErrInternalError
	}

	s.emailService.QueueEmail(existingUser.Email, emailService.LoginLinkData{
		UserName: existingUser.Login,
		Link:     fmt.Sprintf("%s/api/auth/link/redeem?token=%s", s.appBaseURL, token),
	})

	return nil
}

func (s *service) RedeemLoginLink(token string) (*user.User, string, string, error) {
	if token == "" {
		return nil, "", "", ErrInvalidLoginLink
	}

	userID, err := s.repo.ConsumeLoginLink(hashLoginLinkToken(token))
	if err != nil {
		return nil, "", "", err
	}

	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrUserNotFound
		}
		return nil, "", "", ErrInternalError
	}

	jwtToken, refreshToken, err := s.issueTokens(existingUser)
	if err != nil {
		return nil, "", "", err
	}

	return existingUser, jwtToken, refreshToken, nil
}

func (s *service) GoogleAuthURL(state string) (string, error) {
	return s.google.AuthCodeURL(state)
}

func (s *service) GoogleLogin(ctx context.Context, code string) (*user.User, string, string, error) {
	profile, err := s.google.FetchProfile(ctx, code)
	if err != nil {
		fmt.Println("Error fetching google profile: ", err)
		return nil, "", "", ErrInvalidCredentials
	}

	if !profile.VerifiedEmail {
		return nil, "", "", ErrInvalidCredentials
	}

	existingUser, err := s.userService.FindOrCreateGoogleUser(profile.ID, profile.Email)
	if err != nil {
		return nil, "", "", ErrInternalError
	}

	jwtToken, refreshToken, err := s.issueTokens(existingUser)
	if err != nil {
		return nil, "", "", err
	}

	return existingUser, jwtToken, refreshToken, nil
}

func (s *service) RequestPasswordReset(email string) error {
	existingUser, err := s.userService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			fmt.Println("password reset requested for unknown email")
			return nil
		}
		return ErrInternalError
	}

	err = s.SendEmailCode(existingUser, CodePassType)
	if err != nil {
		if errors.Is(err, ErrTooManyEmailCodeRequests) {
			return err
		}
		return ErrInternalError
	}
	return nil
}

func (s *service) ResetPassword(email, code, newPassword string) error {
	existingUser, err := s.userService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrInvalidVerificationCode
		}
		return ErrInternalError
	}

	storedCode, codeType, expiryTime, _, err := s.userService.GetEmailVerificationCode(existingUser.ID)
	if err != nil {
		return ErrInvalidVerificationCode
	}
	if codeType != CodePassType {
		return ErrInvalidCodeType
	}
	if storedCode != code {
		return ErrInvalidVerificationCode
	}
	if time.Now().UTC().After(expiryTime) {
		return ErrVerificationCodeExpired
	}

	err = s.userService.DeleteEmailTwoFactorCode(existingUser.ID)
	if err != nil {
		return ErrInternalError
	}

	err = s.userService.ResetPassword(existingUser.ID, newPassword)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (s *service) PruneExpiredLoginLinks() (int64, error) {
	return s.repo.DeleteExpiredLoginLinks()
}
