package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type instanceRepository struct {
	db *gorm.DB
}

// NewInstanceRepository creates the book instance repository.
func NewInstanceRepository(db *gorm.DB) loan.Repository {
	return &instanceRepository{db: db}
}

// Create starts every row at version 1.
func (r *instanceRepository) Create(ctx context.Context, inst *loan.Instance) error {
	model := &BookInstanceModel{
		UUID:     inst.UUID,
		BookID:   inst.BookID,
		DueBack:  dateColumn(getDB(ctx, r.db), inst.DueBack),
		Status:   string(inst.Status),
		ReaderID: inst.ReaderID,
		Version:  1,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create book instance")
	}
	inst.ID = model.ID
	inst.Version = model.Version
	inst.CreatedAt = model.CreatedAt
	inst.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *instanceRepository) FindByID(ctx context.Context, id uint) (*loan.Instance, error) {
	var model BookInstanceModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrInstanceNotFound
		}
		return nil, apperrors.Wrap(err, "find book instance")
	}
	return toInstanceEntity(&model), nil
}

// Update is a compare-and-set on version. uuid is not in the column list.
func (r *instanceRepository) Update(ctx context.Context, inst *loan.Instance, expectedVersion uint) error {
	db := getDB(ctx, r.db)
	result := db.Model(&BookInstanceModel{}).
		Where("id = ? AND version = ?", inst.ID, expectedVersion).
		Updates(map[string]interface{}{
			"book_id":   inst.BookID,
			"due_back":  dateColumn(db, inst.DueBack),
			"status":    string(inst.Status),
			"reader_id": inst.ReaderID,
			"version":   gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update book instance")
	}

	if result.RowsAffected == 0 {
		var n int64
		if err := db.Model(&BookInstanceModel{}).Where("id = ?", inst.ID).Count(&n).Error; err != nil {
			return apperrors.Wrap(err, "check book instance")
		}
		if n == 0 {
			return loan.ErrInstanceNotFound
		}
		return loan.ErrStaleInstance
	}

	inst.Version = expectedVersion + 1
	return nil
}

// filtered applies the optional status and book filters shared by List and Count.
func (r *instanceRepository) filtered(ctx context.Context, params loan.ListParams) *gorm.DB {
	q := getDB(ctx, r.db).Model(&BookInstanceModel{})
	if params.Status != "" {
		q = q.Where("status = ?", string(params.Status))
	}
	if params.BookID != nil {
		q = q.Where("book_id = ?", *params.BookID)
	}
	return q
}

func (r *instanceRepository) List(ctx context.Context, params loan.ListParams) ([]*loan.Instance, error) {
	var models []BookInstanceModel
	err := r.filtered(ctx, params).
		Order("id ASC").
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "list book instances")
	}
	return toInstanceEntities(models), nil
}

func (r *instanceRepository) Count(ctx context.Context, params loan.ListParams) (int64, error) {
	var n int64
	if err := r.filtered(ctx, params).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "count book instances")
	}
	return n, nil
}

// ListByReader sorts by due date; rows without one come first on both drivers.
func (r *instanceRepository) ListByReader(ctx context.Context, readerID uint) ([]*loan.Instance, error) {
	var models []BookInstanceModel
	err := getDB(ctx, r.db).
		Where("reader_id = ?", readerID).
		Order("due_back ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "list reader instances")
	}
	return toInstanceEntities(models), nil
}

func (r *instanceRepository) ListByBook(ctx context.Context, bookID uint) ([]*loan.Instance, error) {
	var models []BookInstanceModel
	if err := getDB(ctx, r.db).Where("book_id = ?", bookID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "list book instances")
	}
	return toInstanceEntities(models), nil
}

func (r *instanceRepository) ListAll(ctx context.Context) ([]*loan.Instance, error) {
	var models []BookInstanceModel
	if err := getDB(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "list book instances")
	}
	return toInstanceEntities(models), nil
}

func (r *instanceRepository) CountByStatus(ctx context.Context, status loan.Status) (int64, error) {
	return r.Count(ctx, loan.ListParams{Status: status})
}

func toInstanceEntity(model *BookInstanceModel) *loan.Instance {
	return &loan.Instance{
		ID:        model.ID,
		UUID:      model.UUID,
		BookID:    model.BookID,
		DueBack:   calendarDate(model.DueBack),
		Status:    loan.Status(model.Status),
		ReaderID:  model.ReaderID,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toInstanceEntities(models []BookInstanceModel) []*loan.Instance {
	out := make([]*loan.Instance, len(models))
	for i := range models {
		out[i] = toInstanceEntity(&models[i])
	}
	return out
}

// dateColumn pins a due date to midnight in the zone the driver writes times
// in. The DATE column then keeps the calendar day of t whatever loc the DSN
// names.
func dateColumn(db *gorm.DB, t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	v := time.Date(y, m, d, 0, 0, 0, 0, writeLocation(db))
	return &v
}

func writeLocation(db *gorm.DB) *time.Location {
	if d, ok := db.Dialector.(*mysql.Dialector); ok && d.DSNConfig != nil && d.DSNConfig.Loc != nil {
		return d.DSNConfig.Loc
	}
	return time.UTC
}

// calendarDate reads a DATE value back as UTC midnight of the day it was
// scanned as.
func calendarDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}
