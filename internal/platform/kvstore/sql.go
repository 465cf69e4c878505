package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/lessonplan-backend/internal/platform/envutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

// Document is one stored value.
type Document struct {
	Key       string         `gorm:"column:doc_key;primaryKey;size:255"`
	Value     datatypes.JSON `gorm:"column:value;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

func (Document) TableName() string { return "lesson_documents" }

type sqlStore struct {
	log *logger.Logger
	db  *gorm.DB
}

// NewSQLFromEnv opens postgres (POSTGRES_* variables) or sqlite
// (KV_SQLITE_PATH) and migrates the document table.
func NewSQLFromEnv(logg *logger.Logger, driver string) (Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dsn := envutil.String("KV_POSTGRES_DSN", "")
		if dsn == "" {
			dsn = fmt.Sprintf(
				"postgres://%s:%s@%s:%s/%s?sslmode=disable",
				envutil.String("POSTGRES_USER", "postgres"),
				envutil.String("POSTGRES_PASSWORD", ""),
				envutil.String("POSTGRES_HOST", "localhost"),
				envutil.String("POSTGRES_PORT", "5432"),
				envutil.String("POSTGRES_NAME", "lessonplan"),
			)
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(envutil.String("KV_SQLITE_PATH", "lessonplan.db"))
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	st, err := NewSQL(logg, db)
	if err != nil {
		return nil, err
	}
	logg.Info("kv store", "backend", driver)
	return st, nil
}

// NewSQL uses an open connection and migrates the document table.
func NewSQL(logg *logger.Logger, db *gorm.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &sqlStore{log: logg.With("service", "SQLKVStore"), db: db}, nil
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc Document
	err := s.db.WithContext(ctx).Where("doc_key = ?", key).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(doc.Value), true, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	doc := Document{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.log.Debug("document saved", "key", key, "bytes", len(value))
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("doc_key IN ?", keys).Delete(&Document{}).Error; err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (s *sqlStore) ListSetNames(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&Document{}).Pluck("doc_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return setNames(keys), nil
}

func (s *sqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
