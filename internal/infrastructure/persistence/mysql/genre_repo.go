package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/catalog"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type genreRepository struct {
	db *gorm.DB
}

// NewGenreRepository creates the genre repository.
func NewGenreRepository(db *gorm.DB) catalog.GenreRepository {
	return &genreRepository{db: db}
}

// Create maps a unique index violation on name to ErrGenreDuplicate.
func (r *genreRepository) Create(ctx context.Context, g *catalog.Genre) error {
	model := &GenreModel{Name: g.Name}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrGenreDuplicate
		}
		return apperrors.Wrap(err, "create genre")
	}
	g.ID = model.ID
	return nil
}

func (r *genreRepository) FindByID(ctx context.Context, id uint) (*catalog.Genre, error) {
	var model GenreModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrGenreNotFound
		}
		return nil, apperrors.Wrap(err, "find genre")
	}
	return toGenreEntity(&model), nil
}

// FindByIDs issues a single IN query.
func (r *genreRepository) FindByIDs(ctx context.Context, ids []uint) ([]*catalog.Genre, error) {
	if len(ids) == 0 {
		return []*catalog.Genre{}, nil
	}
	var models []GenreModel
	if err := getDB(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "find genres")
	}
	return toGenreEntities(models), nil
}

func (r *genreRepository) Update(ctx context.Context, g *catalog.Genre) error {
	result := getDB(ctx, r.db).Model(&GenreModel{}).Where("id = ?", g.ID).Update("name", g.Name)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return catalog.ErrGenreDuplicate
		}
		return apperrors.Wrap(result.Error, "update genre")
	}
	return nil
}

func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_genres WHERE genre_id = ?", id).Error; err != nil {
			return apperrors.Wrap(err, "unlink genre")
		}
		result := tx.Delete(&GenreModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "delete genre")
		}
		if result.RowsAffected == 0 {
			return catalog.ErrGenreNotFound
		}
		return nil
	})
}

func (r *genreRepository) List(ctx context.Context) ([]*catalog.Genre, error) {
	var models []GenreModel
	if err := getDB(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "list genres")
	}
	return toGenreEntities(models), nil
}

func toGenreEntity(model *GenreModel) *catalog.Genre {
	return &catalog.Genre{ID: model.ID, Name: model.Name}
}

func toGenreEntities(models []GenreModel) []*catalog.Genre {
	genres := make([]*catalog.Genre, len(models))
	for i := range models {
		genres[i] = toGenreEntity(&models[i])
	}
	return genres
}
