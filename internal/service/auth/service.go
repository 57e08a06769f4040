package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jjaspenextech/nextech-shannon-api/internal/config"
	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrMissingField       = errors.New("username and password are required")
)

type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

type SignupInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Service struct {
	users  core.UsersRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewService(users core.UsersRepository, cfg *config.AuthConfig) *Service {
	return &Service{
		users:  users,
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.TokenDuration,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) error {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return ErrMissingField
	}

	_, err := s.users.GetUser(ctx, in.Username)
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		APIKeys:      map[string]string{},
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	log.FromCtx(ctx).Info().Str("username", in.Username).Msg("user signed up")
	return nil
}

// Login returns a signed token for valid credentials. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUser(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issue(user.Username)
}

func (s *Service) issue(username string) (string, error) {
	now := s.now()
	claims := Claims{
		Username: username,
		UserID:   username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username", ErrInvalidToken)
	}
	return claims, nil
}

func (s *Service) UserInfo(ctx context.Context, username string) (core.User, error) {
	return s.users.GetUser(ctx, username)
}

func (s *Service) UpdateAPIKey(ctx context.Context, username, service, key string) error {
	if strings.TrimSpace(service) == "" {
		return errors.New("service is required")
	}
	if err := s.users.SetAPIKey(ctx, username, service, key); err != nil {
		return err
	}
	log.FromCtx(ctx).Info().Str("username", username).Str("service", service).Msg("api key updated")
	return nil
}

func (s *Service) APIKeys(ctx context.Context, username string) (map[string]string, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.APIKeys, nil
}
