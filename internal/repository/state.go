package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/aura-analytics/backend/internal/models"
)

// Ключи долговременного хранилища. Ровно две записи, каждая
// перезаписывается целиком, частичных обновлений не бывает.
const (
	allProfileDataKey  = "allProfileData"
	activeProfileIDKey = "activeProfileId"
)

type StateRepository struct {
	db *pgxpool.Pool
}

// NewStateRepository создает шлюз состояния поверх Postgres.
func NewStateRepository(db *pgxpool.Pool) *StateRepository {
	return &StateRepository{db: db}
}

// EnsureSchema создает таблицу состояния, если ее еще нет.
// Тип колонки JSON, а не JSONB: JSONB пересортировывает ключи объекта,
// а порядок документа определяет, какой профиль считается первым.
func (r *StateRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS app_state (
			key        TEXT PRIMARY KEY,
			value      JSON NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`,
	)
	if err != nil {
		return fmt.Errorf("ensure app_state schema: %w", err)
	}
	return nil
}

// LoadAll читает полную карту леджеров. Битое значение трактуется как
// отсутствующее: вызывающий уходит в бутстрап профиля по умолчанию,
// а не падает. Вторым результатом идут идентификаторы профилей в
// порядке JSON-документа.
func (r *StateRepository) LoadAll(ctx context.Context) (models.AllProfileData, []string, bool, error) {
	raw, ok, err := r.loadRaw(ctx, allProfileDataKey)
	if err != nil || !ok {
		return nil, nil, false, err
	}

	var data models.AllProfileData
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("stored profile data is corrupted, treating as absent", slog.String("error", err.Error()))
		return nil, nil, false, nil
	}

	order, err := profileOrder(raw)
	if err != nil {
		slog.Warn("failed to scan profile order", slog.String("error", err.Error()))
		order = nil
	}

	return data, order, true, nil
}

// SaveAll перезаписывает полную карту леджеров одним значением. Ключи
// пишутся в переданном порядке: json.Marshal сортирует ключи карты, и
// порядок создания профилей терялся бы при каждом сохранении.
func (r *StateRepository) SaveAll(ctx context.Context, data models.AllProfileData, order []string) error {
	raw, err := marshalOrdered(data, order)
	if err != nil {
		return fmt.Errorf("marshal profile data: %w", err)
	}
	return r.saveRaw(ctx, allProfileDataKey, raw)
}

// LoadActiveProfileID читает идентификатор выбранного профиля.
func (r *StateRepository) LoadActiveProfileID(ctx context.Context) (string, bool, error) {
	raw, ok, err := r.loadRaw(ctx, activeProfileIDKey)
	if err != nil || !ok {
		return "", false, err
	}

	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		slog.Warn("stored active profile id is corrupted, treating as absent", slog.String("error", err.Error()))
		return "", false, nil
	}
	return id, true, nil
}

// SaveActiveProfileID сохраняет идентификатор выбранного профиля.
func (r *StateRepository) SaveActiveProfileID(ctx context.Context, id string) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal active profile id: %w", err)
	}
	return r.saveRaw(ctx, activeProfileIDKey, raw)
}

func (r *StateRepository) loadRaw(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte

	err := r.db.QueryRow(ctx,
		`SELECT value FROM app_state WHERE key = $1`,
		key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return raw, true, nil
}

func (r *StateRepository) saveRaw(ctx context.Context, key string, raw []byte) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO app_state (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, updated_at = NOW()`,
		key, raw,
	)
	return err
}

// marshalOrdered кодирует карту леджеров JSON-объектом, записывая ключи
// в заданном порядке. Идентификаторы, отсутствующие в order, дописываются
// в конец отсортированными, чтобы результат был детерминированным.
func marshalOrdered(data models.AllProfileData, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	seen := make(map[string]bool, len(data))
	write := func(id string) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(id)
		if err != nil {
			return err
		}
		value, err := json.Marshal(data[id])
		if err != nil {
			return err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	for _, id := range order {
		if _, ok := data[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		if err := write(id); err != nil {
			return nil, err
		}
	}

	rest := make([]string, 0, len(data))
	for id := range data {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		if err := write(id); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// profileOrder извлекает ключи верхнего уровня JSON-объекта в порядке
// документа. Go-карта порядок не хранит, а выбор "первого" профиля
// должен совпадать с порядком, в котором данные были записаны.
func profileOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrInvalid
	}

	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, ErrInvalid
		}
		order = append(order, key)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
	}

	return order, nil
}
