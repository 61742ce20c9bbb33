package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/utils"
)

const (
	TokenTTL                = 24 * time.Hour
	MinPasswordLength       = 8
	generatedPasswordLength = 12
)

// Имена claims, общие с middleware.
const (
	ClaimUserID   = "user_id"
	ClaimRole     = "role"
	ClaimPlayerID = "player_id"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// CreatePlayerCredentials creates the player's account. The generated
	// password is returned once and never stored in clear text.
	CreatePlayerCredentials(ctx context.Context, playerID int) (*models.User, string, error)
	// EnsureAdmin creates the admin account when the email is not taken yet.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	userRepo   repositories.UserRepository
	playerRepo repositories.PlayerRepository
	jwtSecret  []byte
	logger     *slog.Logger
	now        func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, playerRepo repositories.PlayerRepository, jwtSecret string, logger *slog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		playerRepo: playerRepo,
		jwtSecret:  []byte(jwtSecret),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidationFailed)
	}

	user, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := utils.CheckPasswordHash(input.Password, user.PasswordHash); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	if user.Role == models.RolePlayer {
		if user.PlayerID == nil {
			return nil, ErrForbiddenOperation
		}
		player, err := s.playerRepo.GetByID(ctx, nil, *user.PlayerID)
		if err != nil {
			return nil, handleRepositoryError(err, "login: load player")
		}
		if !player.IsActive() {
			return nil, ErrPlayerInactive
		}
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(TokenTTL)
	claims := jwt.MapClaims{
		ClaimUserID: user.ID,
		ClaimRole:   string(user.Role),
		"exp":       expiresAt.Unix(),
		"iat":       issuedAt.Unix(),
	}
	if user.PlayerID != nil {
		claims[ClaimPlayerID] = *user.PlayerID
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	user.PasswordHash = ""
	return &LoginResult{Token: token, ExpiresAt: expiresAt.UTC(), User: user}, nil
}

func (s *authService) CreatePlayerCredentials(ctx context.Context, playerID int) (*models.User, string, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, playerID)
	if err != nil {
		return nil, "", handleRepositoryError(err, "create credentials: load player")
	}
	if !player.IsActive() {
		return nil, "", ErrPlayerInactive
	}

	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(player.Email),
		PasswordHash: hash,
		Role:         models.RolePlayer,
		PlayerID:     &player.ID,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		if errors.Is(err, repositories.ErrUserPlayerInvalid) {
			return nil, "", ErrPlayerNotFound
		}
		return nil, "", handleRepositoryError(err, "create player credentials")
	}
	s.logger.InfoContext(ctx, "player credentials created", slog.Int("player_id", player.ID), slog.Int("user_id", user.ID))

	user.PasswordHash = ""
	return user, password, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: admin email is required", ErrValidationFailed)
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	_, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return handleRepositoryError(err, "create admin account")
	}
	s.logger.InfoContext(ctx, "admin account created", slog.Int("user_id", user.ID))
	return nil
}

// generatePassword без похожих символов (0/O, 1/l).
func generatePassword(length int) (string, error) {
	const charset = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	limit := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}
