// Package sessionstore реализует сессионное key/value хранилище на основе Redis.
//
// Хранилище переживает рестарты сервиса и содержит снимки сессии:
// сериализованного пользователя и список сгенерированных документов.
// Поле createdAt документов хранится строкой ISO и восстанавливается
// в time.Time при чтении.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coursgen/coursgen/internal/config"
	"github.com/coursgen/coursgen/internal/models"
)

// Префиксы ключей снимков сессии, формат ключа: <префикс>:<uid>.
const (
	userKeyPrefix  = "coursgen_user"
	filesKeyPrefix = "coursgen_files"
)

// Store инкапсулирует подключение к Redis и правила сериализации снимков.
type Store struct {
	Db  *redis.Client
	ttl time.Duration
}

// storedFile дублирует models.GeneratedFile с датой-строкой —
// это формат, в котором снимок лежит в хранилище.
type storedFile struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	Type      string `json:"type"`
	FileURL   string `json:"fileUrl"`
	Status    string `json:"status"`
}

// InitServer подключается к Redis и возвращает готовое хранилище.
func InitServer(ctx context.Context, cfg config.RedisConnection, ttl time.Duration) (*Store, error) {
	const op = "sessionstore.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{Db: db, ttl: ttl}, nil
}

// CheckReady проверяет доступность Redis.
func (s *Store) CheckReady(ctx context.Context) error {
	const op = "sessionstore.CheckReady"
	if err := s.Db.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SaveUser записывает снимок пользователя под ключ coursgen_user:<uid>.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	const op = "sessionstore.SaveUser"
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	key := fmt.Sprintf("%s:%s", userKeyPrefix, user.ID)
	if err := s.Db.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadUser читает снимок пользователя. Возвращает found=false, если снимка нет.
func (s *Store) LoadUser(ctx context.Context, uid string) (*models.User, bool, error) {
	const op = "sessionstore.LoadUser"
	key := fmt.Sprintf("%s:%s", userKeyPrefix, uid)
	val, err := s.Db.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &user, true, nil
}

// ClearUser удаляет снимок пользователя. Отсутствие ключа не является ошибкой.
func (s *Store) ClearUser(ctx context.Context, uid string) error {
	const op = "sessionstore.ClearUser"
	key := fmt.Sprintf("%s:%s", userKeyPrefix, uid)
	if err := s.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SaveFiles записывает список документов под ключ coursgen_files:<uid>,
// конвертируя даты создания в строки ISO.
func (s *Store) SaveFiles(ctx context.Context, uid string, files []models.GeneratedFile) error {
	const op = "sessionstore.SaveFiles"
	stored := make([]storedFile, 0, len(files))
	for _, f := range files {
		stored = append(stored, storedFile{
			ID:        f.ID,
			Title:     f.Title,
			CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339Nano),
			Type:      f.Type,
			FileURL:   f.FileURL,
			Status:    f.Status,
		})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	key := fmt.Sprintf("%s:%s", filesKeyPrefix, uid)
	if err := s.Db.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadFiles читает список документов и восстанавливает createdAt в time.Time.
// Возвращает found=false, если снимка нет.
func (s *Store) LoadFiles(ctx context.Context, uid string) ([]models.GeneratedFile, bool, error) {
	const op = "sessionstore.LoadFiles"
	key := fmt.Sprintf("%s:%s", filesKeyPrefix, uid)
	val, err := s.Db.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	var stored []storedFile
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	files := make([]models.GeneratedFile, 0, len(stored))
	for _, f := range stored {
		createdAt, err := time.Parse(time.RFC3339Nano, f.CreatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", op, err)
		}
		files = append(files, models.GeneratedFile{
			ID:        f.ID,
			Title:     f.Title,
			CreatedAt: createdAt,
			Type:      f.Type,
			FileURL:   f.FileURL,
			Status:    f.Status,
		})
	}
	return files, true, nil
}

// ClearFiles удаляет список документов пользователя.
func (s *Store) ClearFiles(ctx context.Context, uid string) error {
	const op = "sessionstore.ClearFiles"
	key := fmt.Sprintf("%s:%s", filesKeyPrefix, uid)
	if err := s.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
