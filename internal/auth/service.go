package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkau/librarium/internal/config"
	"github.com/avolkau/librarium/internal/entities"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid library id or password")
	ErrRoleMismatch       = errors.New("account role does not match this portal")
	ErrDuplicateLibraryID = errors.New("library id is already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNameRequired       = errors.New("name is required")
	ErrLibraryIDRequired  = errors.New("library id is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrSelfDelete         = errors.New("cannot delete the account you are logged in with")
)

// UserStore is the storage the account service operates on.
type UserStore interface {
	CreateUser(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	GetUserByLibraryID(libraryID string) (*entities.User, error)
	LibraryIDTaken(libraryID string, excludeID uint) (bool, error)
	GetAllUsers() ([]entities.User, error)
	UpdateUserFields(id uint, fields map[string]any) error
	DeleteUser(id uint) error
	CountUsers() (int64, error)
}

// Service handles authentication and account management.
type Service struct {
	store  UserStore
	config config.Auth
}

// NewService creates a new account service.
func NewService(store UserStore, cfg config.Auth) *Service {
	return &Service{
		store:  store,
		config: cfg,
	}
}

// Authenticate validates credentials against the portal role. A wrong
// password and a wrong portal are reported distinctly so callers can
// tailor the message; both are retryable.
func (s *Service) Authenticate(libraryID, password string, portal entities.UserRole) (*entities.User, error) {
	if !portal.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := s.store.GetUserByLibraryID(strings.TrimSpace(libraryID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Credentials are good; the portal check runs last so the caller
	// can distinguish the two failures.
	switch user.Role {
	case portal:
		return user, nil
	case entities.UserRoleAdmin, entities.UserRoleStudent:
		return nil, ErrRoleMismatch
	default:
		return nil, ErrInvalidRole
	}
}

// Register creates a self-service student account. The caller is
// responsible for establishing the session afterwards (auto-login).
func (s *Service) Register(name, libraryID, password string) (*entities.User, error) {
	return s.CreateAccount(name, libraryID, password, entities.UserRoleStudent)
}

// CreateAccount creates a user of either role. The library identifier
// must be unique across all users regardless of role; when empty, a
// card number is generated.
func (s *Service) CreateAccount(name, libraryID, password string, role entities.UserRole) (*entities.User, error) {
	name = strings.TrimSpace(name)
	libraryID = strings.TrimSpace(libraryID)

	if name == "" {
		return nil, ErrNameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if libraryID == "" {
		libraryID = generateLibraryID()
	}

	taken, err := s.store.LibraryIDTaken(libraryID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		return nil, ErrDuplicateLibraryID
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		LibraryID:    libraryID,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// AccountUpdate carries the editable account fields. Nil means keep.
type AccountUpdate struct {
	Name      *string
	LibraryID *string
	Password  *string
	Role      *entities.UserRole
}

// UpdateAccount edits an account. A changed library identifier is
// re-checked for uniqueness against all other users.
func (s *Service) UpdateAccount(id uint, update AccountUpdate) (*entities.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		fields["name"] = name
	}

	if update.LibraryID != nil {
		libraryID := strings.TrimSpace(*update.LibraryID)
		if libraryID == "" {
			return nil, ErrLibraryIDRequired
		}
		if libraryID != user.LibraryID {
			taken, err := s.store.LibraryIDTaken(libraryID, id)
			if err != nil {
				return nil, fmt.Errorf("failed to check existing user: %w", err)
			}
			if taken {
				return nil, ErrDuplicateLibraryID
			}
			fields["library_id"] = libraryID
		}
	}

	if update.Password != nil && *update.Password != "" {
		hash, err := HashPassword(*update.Password, s.config.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password_hash"] = hash
	}

	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, ErrInvalidRole
		}
		fields["role"] = *update.Role
	}

	if len(fields) > 0 {
		if err := s.store.UpdateUserFields(id, fields); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return s.GetUserByID(id)
}

// DeleteAccount removes a user. An admin cannot remove the account
// they are currently logged in with.
func (s *Service) DeleteAccount(id, actorID uint) error {
	if id == actorID {
		return ErrSelfDelete
	}
	err := s.store.DeleteUser(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.store.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListAccounts returns the full roster.
func (s *Service) ListAccounts() ([]entities.User, error) {
	return s.store.GetAllUsers()
}

// HasUsers returns true if any users exist.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.store.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// generateLibraryID derives a readable card number from a fresh UUID.
func generateLibraryID() string {
	id := uuid.New().String()
	return "LIB-" + strings.ToUpper(id[:8])
}
