package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/catalog"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository creates the author repository.
func NewAuthorRepository(db *gorm.DB) catalog.AuthorRepository {
	return &authorRepository{db: db}
}

// Create stores the author with its search key.
func (r *authorRepository) Create(ctx context.Context, a *catalog.Author) error {
	model := &AuthorModel{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Description: a.Description,
		SearchKey:   searchKey(a.FirstName, a.LastName),
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create author")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *authorRepository) FindByID(ctx context.Context, id uint) (*catalog.Author, error) {
	var model AuthorModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrAuthorNotFound
		}
		return nil, apperrors.Wrap(err, "find author")
	}
	return toAuthorEntity(&model), nil
}

func (r *authorRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := getDB(ctx, r.db).Model(&AuthorModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperrors.Wrap(err, "check author")
	}
	return n > 0, nil
}

func (r *authorRepository) Update(ctx context.Context, a *catalog.Author) error {
	result := getDB(ctx, r.db).Model(&AuthorModel{ID: a.ID}).Updates(map[string]interface{}{
		"first_name":  a.FirstName,
		"last_name":   a.LastName,
		"description": a.Description,
		"search_key":  searchKey(a.FirstName, a.LastName),
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update author")
	}
	return nil
}

// Delete clears the author from its books before removing it.
func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&BookModel{}).Where("author_id = ?", id).Update("author_id", nil).Error
		if err != nil {
			return apperrors.Wrap(err, "detach author books")
		}
		result := tx.Delete(&AuthorModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "delete author")
		}
		if result.RowsAffected == 0 {
			return catalog.ErrAuthorNotFound
		}
		return nil
	})
}

func (r *authorRepository) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Author, error) {
	var models []AuthorModel
	err := getDB(ctx, r.db).
		Order("id ASC").
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "list authors")
	}
	return toAuthorEntities(models), nil
}

func (r *authorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := getDB(ctx, r.db).Model(&AuthorModel{}).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "count authors")
	}
	return n, nil
}

// Search matches the folded name key.
func (r *authorRepository) Search(ctx context.Context, term string) ([]*catalog.Author, error) {
	p := containsPattern(term)
	var models []AuthorModel
	err := getDB(ctx, r.db).
		Where("search_key LIKE ? ESCAPE '!'", p).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "search authors")
	}
	return toAuthorEntities(models), nil
}

func toAuthorEntity(model *AuthorModel) *catalog.Author {
	return &catalog.Author{
		ID:          model.ID,
		FirstName:   model.FirstName,
		LastName:    model.LastName,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toAuthorEntities(models []AuthorModel) []*catalog.Author {
	authors := make([]*catalog.Author, len(models))
	for i := range models {
		authors[i] = toAuthorEntity(&models[i])
	}
	return authors
}
