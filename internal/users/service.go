package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartpkg "github.com/littlethreads/backend/internal/cart"
	"github.com/littlethreads/backend/pkg/db"
	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
)

// Service exposes the user operations this backend owns. Credential issuance
// lives with the auth collaborator; password hashes arrive pre-computed.
type Service interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	CreateUserWithCart(ctx context.Context, input CreateUserInput) (*UserDTO, error)
}

// CreateUserInput holds the validated payload to register a user record.
type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.UserRole
}

// UserDTO is the read shape for a user record.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	IsNewUser bool           `json:"is_new_user"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewUserDTO maps the model into its read shape.
func NewUserDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsNewUser: u.IsNewUser,
		CreatedAt: u.CreatedAt,
	}
}

// service implements the user service.
type service struct {
	repo     *Repository
	cartRepo *cartpkg.Repository
	dbClient *db.Client
}

// NewService constructs a user service instance.
func NewService(repo *Repository, cartRepo *cartpkg.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, cartRepo: cartRepo, dbClient: dbClient}, nil
}

// GetUser returns one user record.
func (s *service) GetUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return NewUserDTO(user), nil
}

// CreateUserWithCart inserts the user and their empty cart in one transaction.
// The cart is created here explicitly rather than by a persistence hook, so
// there is exactly one place this pairing happens.
func (s *service) CreateUserWithCart(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if input.PasswordHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password hash is required")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be one of admin, user")
	}

	var created *models.User
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txCarts := s.cartRepo.WithTx(tx)

		user := &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: input.PasswordHash,
			Role:         role,
			IsNewUser:    true,
		}
		inserted, err := txRepo.Create(ctx, user)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
		}
		created = inserted

		cart := &models.Cart{UserID: &inserted.ID, Items: models.CartItems{}}
		if _, err := txCarts.Create(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create cart for user")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user with cart")
	}

	return NewUserDTO(created), nil
}
