package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoSuchRole         = errors.New("account does not hold this role")
	ErrAwaitingApproval   = errors.New("your account is awaiting approval from an existing admin")
	ErrNotApprovedAdmin   = errors.New("caller is not an approved administrator")
)

type IdentityUseCase interface {
	Register(ctx context.Context, kind domain.RoleKind, input RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, username, password string, kind domain.RoleKind) (string, error)
	ParseToken(token string) (*Session, error)
	ApproveAdmin(ctx context.Context, callerID, roleID int64, approve bool) (*domain.Role, error)
	PendingAdmins(ctx context.Context, kind domain.RoleKind) ([]domain.RoleProfile, error)
	Profile(ctx context.Context, identityID int64) (*domain.Identity, *domain.Role, error)
	UpdateProfile(ctx context.Context, identityID int64, firstName, lastName, phone string) error
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Session is the verified content of a login token.
type Session struct {
	IdentityID int64
	Kind       domain.RoleKind
}

type sessionClaims struct {
	jwt.RegisteredClaims
	IdentityID int64  `json:"identity_id"`
	Role       string `json:"role"`
}

type IdentityService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewIdentityService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *IdentityService {
	return &IdentityService{users: users, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

// Register creates the identity and its single role row. Administrator kinds
// start unapproved; staff can log in immediately.
func (s *IdentityService) Register(ctx context.Context, kind domain.RoleKind, input RegisterInput) (*domain.Identity, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, errors.New("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		Username:     input.Username,
		Email:        input.Email,
		Phone:        input.Phone,
		Active:       true,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateIdentity(ctx, identity); err != nil {
		return nil, err
	}

	role := &domain.Role{
		IdentityID:     identity.ID,
		Kind:           kind,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Phone:          input.Phone,
		ApprovalStatus: kind == domain.RoleStaff,
	}
	if err := s.users.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return identity, nil
}

// Login verifies credentials and the role gate, then issues a signed session
// token. Administrator kinds are refused until an approved administrator has
// flipped their approval flag.
func (s *IdentityService) Login(ctx context.Context, username, password string, kind domain.RoleKind) (string, error) {
	identity, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	role, err := s.users.RoleByIdentity(ctx, identity.ID)
	if err != nil || role.Kind != kind {
		return "", ErrNoSuchRole
	}
	if role.IsAdminKind() && !role.ApprovalStatus {
		return "", ErrAwaitingApproval
	}

	return s.signToken(identity.ID, role.Kind)
}

func (s *IdentityService) signToken(identityID int64, kind domain.RoleKind) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		IdentityID: identityID,
		Role:       string(kind),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken validates a session token: HS256 only, not expired.
func (s *IdentityService) ParseToken(tokenString string) (*Session, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	claims := &sessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("token expired")
	}
	return &Session{IdentityID: claims.IdentityID, Kind: domain.RoleKind(claims.Role)}, nil
}

// ApproveAdmin flips another administrator's approval flag. Only a caller
// whose own role is an approved administrator kind may do this; the flip is a
// pure boolean assignment with no effect on the flight ledger.
func (s *IdentityService) ApproveAdmin(ctx context.Context, callerID, roleID int64, approve bool) (*domain.Role, error) {
	caller, err := s.users.RoleByIdentity(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("caller role: %w", err)
	}
	if !caller.IsAdminKind() || !caller.ApprovalStatus {
		return nil, ErrNotApprovedAdmin
	}
	return s.users.SetRoleApproval(ctx, roleID, approve)
}

func (s *IdentityService) PendingAdmins(ctx context.Context, kind domain.RoleKind) ([]domain.RoleProfile, error) {
	return s.users.PendingAdmins(ctx, kind)
}

func (s *IdentityService) Profile(ctx context.Context, identityID int64) (*domain.Identity, *domain.Role, error) {
	identity, err := s.users.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, nil, err
	}
	role, err := s.users.RoleByIdentity(ctx, identityID)
	if err != nil {
		return nil, nil, err
	}
	return identity, role, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, identityID int64, firstName, lastName, phone string) error {
	return s.users.UpdateProfile(ctx, identityID, firstName, lastName, phone)
}

var _ IdentityUseCase = (*IdentityService)(nil)
