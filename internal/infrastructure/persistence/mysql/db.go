// Package mysql implements the domain repositories on gorm. MySQL serves
// production; SQLite through the same models serves local runs and tests.
package mysql

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/logger"
)

// NewDB opens the database, tunes the pool and migrates the schema.
// The sqlite driver serves local development and tests.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Path)
	default:
		dialector = mysql.Open(cfg.Database.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(logLevel),
		NowFunc: time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("database connected", map[string]interface{}{"driver": cfg.Database.Driver})

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or extends the schema and fills search keys missing
// from rows written before the column existed. It never drops columns.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&UserModel{},
		&ProfileModel{},
		&GenreModel{},
		&AuthorModel{},
		&BookModel{},
		&BookInstanceModel{},
		&BookReviewModel{},
	)
	if err != nil {
		return err
	}
	return backfillSearchKeys(db)
}

func backfillSearchKeys(db *gorm.DB) error {
	missing := "search_key IS NULL OR search_key = ''"

	var books []BookModel
	if err := db.Select("id", "title", "summary").Where(missing).Find(&books).Error; err != nil {
		return fmt.Errorf("load books without search key: %w", err)
	}
	for _, b := range books {
		err := db.Model(&BookModel{ID: b.ID}).UpdateColumn("search_key", searchKey(b.Title, b.Summary)).Error
		if err != nil {
			return fmt.Errorf("fill book search key: %w", err)
		}
	}

	var authors []AuthorModel
	if err := db.Select("id", "first_name", "last_name").Where(missing).Find(&authors).Error; err != nil {
		return fmt.Errorf("load authors without search key: %w", err)
	}
	for _, a := range authors {
		err := db.Model(&AuthorModel{ID: a.ID}).UpdateColumn("search_key", searchKey(a.FirstName, a.LastName)).Error
		if err != nil {
			return fmt.Errorf("fill author search key: %w", err)
		}
	}
	return nil
}

// UserModel is an account row.
type UserModel struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:150;not null"`
	Email     string `gorm:"size:254"`
	Password  string `gorm:"size:255;not null;comment:bcrypt hash"`
	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`
	IsStaff   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// ProfileModel is one per user and is removed with it.
type ProfileModel struct {
	ID       uint       `gorm:"primaryKey"`
	UserID   uint       `gorm:"uniqueIndex;not null"`
	User     *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PhotoURL string     `gorm:"size:500"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

type GenreModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:200;not null"`
}

func (GenreModel) TableName() string {
	return "genres"
}

// AuthorModel keeps SearchKey, the folded first and last name, in step with
// the names on every write.
type AuthorModel struct {
	ID          uint   `gorm:"primaryKey"`
	FirstName   string `gorm:"size:100;not null"`
	LastName    string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	SearchKey   string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AuthorModel) TableName() string {
	return "authors"
}

// BookModel links genres through book_genres(book_id, genre_id). SearchKey
// is the folded title and summary.
type BookModel struct {
	ID        uint         `gorm:"primaryKey"`
	Title     string       `gorm:"size:200;not null"`
	Summary   string       `gorm:"size:1000"`
	ISBN      string       `gorm:"column:isbn;size:13;not null"`
	AuthorID  *uint        `gorm:"index"`
	Author    *AuthorModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	Genres    []GenreModel `gorm:"many2many:book_genres;joinForeignKey:BookID;joinReferences:GenreID"`
	CoverURL  string       `gorm:"size:500"`
	SearchKey string       `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BookModel) TableName() string {
	return "books"
}

// BookInstanceModel is a physical copy. UUID is insert-only.
type BookInstanceModel struct {
	ID        uint       `gorm:"primaryKey"`
	UUID      string     `gorm:"column:uuid;<-:create;uniqueIndex;size:36;not null"`
	BookID    *uint      `gorm:"index"`
	Book      *BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:SET NULL"`
	DueBack   *time.Time `gorm:"type:date"`
	Status    string     `gorm:"index;size:16;not null;default:available"`
	ReaderID  *uint      `gorm:"index"`
	Reader    *UserModel `gorm:"foreignKey:ReaderID;constraint:OnDelete:SET NULL"`
	Version   uint       `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BookInstanceModel) TableName() string {
	return "book_instances"
}

// BookReviewModel has no update path; CreatedAt is insert-only.
type BookReviewModel struct {
	ID         uint       `gorm:"primaryKey"`
	BookID     *uint      `gorm:"index"`
	Book       *BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:SET NULL"`
	ReviewerID *uint      `gorm:"index"`
	Reviewer   *UserModel `gorm:"foreignKey:ReviewerID;constraint:OnDelete:SET NULL"`
	Content    string     `gorm:"type:text;not null"`
	CreatedAt  time.Time  `gorm:"<-:create"`
}

func (BookReviewModel) TableName() string {
	return "book_reviews"
}
