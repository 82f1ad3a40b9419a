// Package storage реализует леджер кредитов на основе PostgreSQL.
// Леджер хранит тариф, остаток кредитов и счётчик генераций по каждому
// пользователю и предоставляет атомарную операцию инкремента счётчика.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/coursgen/coursgen/internal/models"
)

// ErrProfileNotFound возвращается, когда для пользователя нет строки леджера
// (например, после сбоя провижининга при регистрации).
var ErrProfileNotFound = errors.New("profile not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с леджером кредитов.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'profiles'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table profiles missing or query error: %w", err)
	}
	return nil
}

// CreateProfile провижинит строку леджера для нового пользователя:
// тариф free, стартовый баланс 1 кредит, счётчик генераций 0.
func (s *Storage) CreateProfile(ctx context.Context, userID, firstName, lastName string) error {
	const op = "storage.CreateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO profiles (user_id, first_name, last_name, plan, credit_balance, generation_count)
			  VALUES ($1, $2, $3, 'free', 1, 0)`
	if _, err := s.DB.ExecContext(ctx, query, userID, firstName, lastName); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SelectProfile возвращает полную проекцию строки леджера по идентификатору пользователя.
func (s *Storage) SelectProfile(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "storage.SelectProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, first_name, last_name, plan, credit_balance, generation_count
			  FROM profiles WHERE user_id = $1`
	row := s.DB.QueryRowContext(ctx, query, userID)

	var result models.Profile
	if err := row.Scan(&result.UserID, &result.FirstName, &result.LastName,
		&result.Plan, &result.CreditBalance, &result.GenerationCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// CheckCredits возвращает тариф и текущий остаток кредитов пользователя.
// Используется контроллером как just-in-time чтение перед списанием.
func (s *Storage) CheckCredits(ctx context.Context, userID string) (string, int, error) {
	const op = "storage.CheckCredits"
	select {
	case <-ctx.Done():
		return "", 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT plan, credit_balance FROM profiles WHERE user_id = $1`
	var plan string
	var balance int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&plan, &balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}
	return plan, balance, nil
}

// IncrementGenerationCount атомарно увеличивает счётчик генераций
// и возвращает новое значение.
func (s *Storage) IncrementGenerationCount(ctx context.Context, userID string) (int, error) {
	const op = "storage.IncrementGenerationCount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles SET generation_count = generation_count + 1
			  WHERE user_id = $1
			  RETURNING generation_count`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
