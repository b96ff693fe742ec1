package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vovakirdan/roomrelay/internal/store"
)

type roomModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Title     string `gorm:"not null;check:chk_rooms_title,length(title) > 0"`
	UserID    string `gorm:"not null;default:''"`
	CreatedAt time.Time
	Messages  []messageModel `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

func (roomModel) TableName() string { return "rooms" }

type messageModel struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	RoomID int64  `gorm:"not null;index:idx_messages_room"`
	Author string `gorm:"not null;default:''"`
	Text   string `gorm:"not null;default:''"`
	Date   string `gorm:"not null;default:''"`
}

func (messageModel) TableName() string { return "messages" }

// PostgresStore implements store.Store on top of gorm.
type PostgresStore struct {
	db *gorm.DB
}

// New connects to dsn and migrates the schema.
func New(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.AutoMigrate(&roomModel{}, &messageModel{}); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) CreateRoom(ctx context.Context, title, userID string) (*store.Room, error) {
	row := roomModel{Title: title, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	return toRoom(row), nil
}

func (s *PostgresStore) RenameRoom(ctx context.Context, roomID int64, newTitle string) error {
	res := s.db.WithContext(ctx).Model(&roomModel{}).Where("id = ?", roomID).Update("title", newTitle)
	if res.Error != nil {
		return fmt.Errorf("update room: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("room %d: %w", roomID, store.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetRoom(ctx context.Context, roomID int64) (*store.Room, error) {
	var row roomModel
	if err := s.db.WithContext(ctx).First(&row, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("room %d: %w", roomID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query room: %w", err)
	}
	return toRoom(row), nil
}

func (s *PostgresStore) ListRooms(ctx context.Context) ([]*store.Room, error) {
	var rows []roomModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	return lo.Map(rows, func(item roomModel, _ int) *store.Room { return toRoom(item) }), nil
}

func (s *PostgresStore) DeleteRoom(ctx context.Context, roomID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&messageModel{}).Error; err != nil {
			return fmt.Errorf("delete room messages: %w", err)
		}
		res := tx.Delete(&roomModel{}, roomID)
		if res.Error != nil {
			return fmt.Errorf("delete room: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("room %d: %w", roomID, store.ErrNotFound)
		}
		return nil
	})
}

func (s *PostgresStore) CreateMessage(ctx context.Context, author, text, date string, roomID int64) error {
	row := messageModel{RoomID: roomID, Author: author, Text: text, Date: date}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, roomID int64) ([]*store.Message, error) {
	var rows []messageModel
	if err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	return lo.Map(rows, func(item messageModel, _ int) *store.Message { return toMessage(item) }), nil
}

func toRoom(row roomModel) *store.Room {
	return &store.Room{
		ID:        row.ID,
		Title:     row.Title,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
	}
}

func toMessage(row messageModel) *store.Message {
	return &store.Message{
		ID:     row.ID,
		Author: row.Author,
		Text:   row.Text,
		Date:   row.Date,
		RoomID: row.RoomID,
	}
}
