package services

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/storage"
	"github.com/voyagehub/travel-backend/internal/validation"
)

// UserService is the admin user directory
type UserService struct {
	users         UserStore
	refreshTokens RefreshTokenStore
	photos        storage.PhotoStore
	validator     *validation.Validator
	bcryptCost    int
	logger        *logrus.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserStore, refreshTokens RefreshTokenStore, photos storage.PhotoStore, validator *validation.Validator, bcryptCost int, logger *logrus.Logger) *UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		users:         users,
		refreshTokens: refreshTokens,
		photos:        photos,
		validator:     validator,
		bcryptCost:    bcryptCost,
		logger:        logger,
	}
}

// emailAvailable is the async uniqueness stage for the email field
func (s *UserService) emailAvailable(email string, excludeID uuid.UUID) validation.Check {
	return validation.Check{Field: "email", Fn: func(ctx context.Context) (string, error) {
		exists, err := s.users.ExistsByEmail(ctx, models.NormalizeEmail(email), excludeID)
		if err != nil {
			return "", err
		}
		if exists {
			return "email is already registered", nil
		}
		return "", nil
	}}
}

// Create stores a new user with a hashed password and optional photo
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest, photo *multipart.FileHeader) (*models.User, error) {
	if err := s.validator.Validate(ctx, req, s.emailAvailable(req.Email, uuid.Nil)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        models.NormalizeEmail(req.Email),
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        models.NewNullString(req.Phone),
		Address:      models.NewNullString(req.Address),
		IsActive:     true,
	}
	if photo != nil {
		url, err := s.photos.Save(photo, "users")
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = models.NewNullString(url)
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.discardPhoto(user.ProfilePicture.String)
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, f models.UserFilter) ([]models.User, models.PageMeta, error) {
	f.Normalize()
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return users, models.NewPageMeta(total, f.ListParams), nil
}

// Update applies the supplied fields. A password change or deactivation
// revokes every refresh token of the user.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req models.UpdateUserRequest, photo *multipart.FileHeader) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var checks []validation.Check
	if req.Email != nil && models.NormalizeEmail(*req.Email) != user.Email {
		checks = append(checks, s.emailAvailable(*req.Email, id))
	}
	if err := s.validator.Validate(ctx, req, checks...); err != nil {
		return nil, err
	}

	wasActive := user.IsActive
	req.ApplyTo(user)

	oldPhoto := user.ProfilePicture.String
	if photo != nil {
		url, err := s.photos.Save(photo, "users")
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = models.NewNullString(url)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if photo != nil {
			s.discardPhoto(user.ProfilePicture.String)
		}
		return nil, err
	}
	if photo != nil {
		s.discardPhoto(oldPhoto)
	}

	revoke := wasActive && !user.IsActive
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
			return nil, err
		}
		revoke = true
	}
	if revoke {
		if _, err := s.refreshTokens.RevokeAllForUser(ctx, id); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if id == actor.UserID {
		return apperr.Conflict("You cannot delete your own account").WithCode("SELF_DELETE")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.discardPhoto(user.ProfilePicture.String)
	return nil
}

// DeleteAll removes every user matching f except the caller
func (s *UserService) DeleteAll(ctx context.Context, actor Actor, f models.UserFilter) (int64, error) {
	return s.users.DeleteAll(ctx, f, actor.UserID)
}

func (s *UserService) discardPhoto(url string) {
	if url == "" || s.photos == nil {
		return
	}
	if err := s.photos.Delete(url); err != nil {
		s.logger.WithError(err).WithField("photo", url).Warn("Failed to delete photo")
	}
}
