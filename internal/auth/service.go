package auth

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/liuqy/experiment-management/internal"
	userDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByUsername(username string) (*userDatamodel.User, error)
	CreateUser(user *userDatamodel.User) error
	GetGrants(userID int64) ([]userDatamodel.PermissionGrant, error)
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (*AuthResult, error)
	Register(dto RegisterDTO) (*AuthResult, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolveUser(username string) (*User, error)
}

// Service performs authentication business logic.
type Service struct {
	repo        RepositoryAPI
	tokenGen    TokenGeneratorAPI
	bcryptCost  int
	minPassword int
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost, minPassword int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokenGen:    tokenGen,
		bcryptCost:  bcryptCost,
		minPassword: minPassword,
		logger:      logger,
	}
}

// Authenticate verifies credentials and issues a token. Unknown username and
// wrong password return the same error so usernames cannot be enumerated.
func (s *Service) Authenticate(dto LoginDTO) (*AuthResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.repo.GetByUsername(dto.Username)
	if err != nil || stored == nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	return s.issueToken(stored)
}

// Register stores a new non-privileged user and auto-logs-in on success.
func (s *Service) Register(dto RegisterDTO) (*AuthResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if len(dto.Password) < s.minPassword {
		return nil, internal.NewValidationError("password too short", internal.ErrCodeWeakPassword)
	}

	existing, err := s.repo.GetByUsername(dto.Username)
	if err != nil {
		s.logger.Error("register: username lookup failed", "error", err)
		return nil, internal.NewInternalError("failed to register user", err)
	}
	if existing != nil {
		return nil, internal.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	newUser := &userDatamodel.User{
		Username:     dto.Username,
		PasswordHash: string(hash),
		Role:         userDatamodel.RoleUser,
	}

	if err := s.repo.CreateUser(newUser); err != nil {
		// unique constraint is the backstop for a concurrent register
		s.logger.Error("register: insert failed", "error", err, "username", dto.Username)
		return nil, internal.ErrUsernameTaken
	}

	s.logger.Info("registered new user", "user_id", newUser.ID, "username", newUser.Username)

	return s.issueToken(newUser)
}

func (s *Service) issueToken(u *userDatamodel.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokenGen.GenerateAccessToken(u.Username, u.Role)
	if err != nil {
		s.logger.Error("failed to sign access token", "error", err, "username", u.Username)
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	return &AuthResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Unix(),
		UserInfo: UserInfo{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
		},
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString)
}

// ResolveUser loads the identity embedded in a verified token, including its
// permission grants. Fails when the subject no longer maps to a stored user.
func (s *Service) ResolveUser(username string) (*User, error) {
	stored, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if stored == nil {
		return nil, internal.ErrUserNotFound
	}

	grants, err := s.repo.GetGrants(stored.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permission grants", err)
	}

	grantMap := make(map[Module]Grant, len(grants))
	for _, g := range grants {
		grantMap[Module(g.Module)] = Grant{
			Module:    Module(g.Module),
			CanRead:   g.CanRead,
			CanWrite:  g.CanWrite,
			CanDelete: g.CanDelete,
		}
	}

	return &User{
		ID:       stored.ID,
		Username: stored.Username,
		Role:     stored.Role,
		Grants:   grantMap,
	}, nil
}
