// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login with JWT access tokens and
// user profiles.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/auth"
	"github.com/dmitrijs2005/foodgram/internal/server/config"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// BannedUsernames may not be registered.
var BannedUsernames = []string{"me", "admin", "root"}

// UserService provides identity operations:
// - Register: create users with a bcrypt password hash
// - Login: verify credentials and mint an access token
// - Profile/List: users as seen by a viewer, with subscription flags
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	relations                   *RelationStore
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		relations:                   NewRelationStore(db, m),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  bcrypt.DefaultCost,
	}
}

// Register creates user with the given password. Duplicate email or
// username yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if slices.Contains(BannedUsernames, strings.ToLower(user.UserName)) {
		return nil, fmt.Errorf("%w: username %q is not allowed", common.ErrorValidation, user.UserName)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	user.PasswordHash = hash
	user.Role = models.RoleUser

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the password of the user registered under email and, on
// success, returns a signed access token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// SetPassword replaces the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID int64, current, next string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)) != nil {
		return fmt.Errorf("%w: current password is incorrect", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return repo.UpdatePassword(ctx, userID, hash)
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// UpdateProfile applies a partial change to the user's names and avatar.
// An avatar must be a key issued for avatar uploads; an empty key removes it.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if upd.AvatarKey != nil && *upd.AvatarKey != "" && !strings.HasPrefix(*upd.AvatarKey, AvatarKeyPrefix) {
		return nil, fmt.Errorf("%w: avatar must be uploaded under %s", common.ErrorValidation, AvatarKeyPrefix)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.AvatarKey != nil {
		user.AvatarKey = *upd.AvatarKey
	}
	if err := repo.UpdateProfile(ctx, id, user.FirstName, user.LastName, user.AvatarKey); err != nil {
		return nil, err
	}
	return user, nil
}

// Profile returns user id as seen by viewerID (0 for anonymous).
func (s *UserService) Profile(ctx context.Context, viewerID, id int64) (*models.UserProfile, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{User: user}
	if viewerID != 0 && viewerID != id {
		if profile.IsSubscribed, err = s.relations.Exists(ctx, models.RelationSubscription, viewerID, id); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// List returns users whose username starts with prefix and the total count.
func (s *UserService) List(ctx context.Context, viewerID int64, prefix string, page models.Page) ([]*models.UserProfile, int64, error) {
	var result []*models.UserProfile
	var total int64

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnlySnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		list, err := repo.List(ctx, prefix, page)
		if err != nil {
			return err
		}
		if total, err = repo.Count(ctx, prefix); err != nil {
			return err
		}

		ids := make([]int64, len(list))
		for i, u := range list {
			ids[i] = u.ID
		}
		subscribed, err := s.relations.On(tx).Present(ctx, models.RelationSubscription, viewerID, ids)
		if err != nil {
			return err
		}

		for _, u := range list {
			result = append(result, &models.UserProfile{User: u, IsSubscribed: subscribed[u.ID]})
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return result, total, nil
}
