package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates the user repository.
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create inserts the user and its empty profile together.
// Username uniqueness is left to the unique index.
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}

	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			if isDuplicateError(err) {
				return user.ErrUsernameDuplicate
			}
			return apperrors.Wrap(err, "create user")
		}
		if err := tx.Omit("User").Create(&ProfileModel{UserID: model.ID}).Error; err != nil {
			return apperrors.Wrap(err, "create profile")
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "find user")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var model UserModel
	if err := getDB(ctx, r.db).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "find user")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := getDB(ctx, r.db).Model(&UserModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperrors.Wrap(err, "check user")
	}
	return n > 0, nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	result := getDB(ctx, r.db).Model(&UserModel{ID: u.ID}).Updates(map[string]interface{}{
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"is_staff":   u.IsStaff,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update user")
	}
	return nil
}

// Delete removes the profile with the user; instances and reviews stay
// with their reader and reviewer cleared.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&BookInstanceModel{}).Where("reader_id = ?", id).Update("reader_id", nil).Error; err != nil {
			return apperrors.Wrap(err, "detach reader instances")
		}
		if err := tx.Model(&BookReviewModel{}).Where("reviewer_id = ?", id).Update("reviewer_id", nil).Error; err != nil {
			return apperrors.Wrap(err, "detach reviewer reviews")
		}
		if err := tx.Where("user_id = ?", id).Delete(&ProfileModel{}).Error; err != nil {
			return apperrors.Wrap(err, "delete profile")
		}
		result := tx.Delete(&UserModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "delete user")
		}
		if result.RowsAffected == 0 {
			return user.ErrUserNotFound
		}
		return nil
	})
}

// FindProfile preloads the owning user.
func (r *userRepository) FindProfile(ctx context.Context, userID uint) (*user.Profile, error) {
	var model ProfileModel
	if err := getDB(ctx, r.db).Preload("User").Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(err, "find profile")
	}

	p := &user.Profile{ID: model.ID, UserID: model.UserID, PhotoURL: model.PhotoURL}
	if model.User != nil {
		p.User = toUserEntity(model.User)
	}
	return p, nil
}

func (r *userRepository) UpdatePhoto(ctx context.Context, userID uint, photoURL string) error {
	result := getDB(ctx, r.db).Model(&ProfileModel{}).Where("user_id = ?", userID).Update("photo_url", photoURL)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update profile photo")
	}
	if result.RowsAffected == 0 {
		return user.ErrProfileNotFound
	}
	return nil
}

func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:        model.ID,
		Username:  model.Username,
		Email:     model.Email,
		Password:  model.Password,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		IsStaff:   model.IsStaff,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
