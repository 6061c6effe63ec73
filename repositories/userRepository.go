package repositories

import (
	"context"

	"RxClinic/apperrors"
	"RxClinic/cache"
	"RxClinic/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type UserStore = Store[models.User, *models.User]

// UserRepository adds credential queries to the users store. The password
// column is excluded from cached copies and from generic updates.
type UserRepository struct {
	*UserStore
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB, resolver *Resolver, c *cache.Cache, log zerolog.Logger) *UserRepository {
	return &UserRepository{
		UserStore: NewStore[models.User](db, resolver, c, log).Protect("password"),
		db:        db,
	}
}

// EmailExists reports whether another user already has email.
func (r *UserRepository) EmailExists(ctx context.Context, email, exceptID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email)
	if exceptID != "" {
		q = q.Where("user_id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, classify(err, "users")
	}
	return count > 0, nil
}

// GetByEmail loads a user with its password hash, bypassing the cache.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		err = classify(err, "users")
		if nf, ok := err.(*apperrors.NotFoundError); ok {
			nf.ID = email
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"password": hash, "updated_by": actorID})
	if res.Error != nil {
		return classify(res.Error, "users")
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Entity: "users", ID: userID}
	}
	r.Invalidate(ctx, userID)
	return nil
}
