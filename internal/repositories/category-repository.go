package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"profile-system/internal/entities"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbCategory struct {
	ID          uint64
	Name        string
	Description sql.NullString
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   sql.NullTime
}

func (db *dbCategory) toEntity() entities.FieldCategory {
	c := entities.FieldCategory{
		ID:          db.ID,
		Name:        db.Name,
		Description: utils.NullStringToString(db.Description),
		SortOrder:   db.SortOrder,
		CreatedAt:   db.CreatedAt,
	}
	if db.UpdatedAt.Valid {
		c.UpdatedAt = db.UpdatedAt.Time
	}
	return c
}

const (
	categoryTable  = "field_categories"
	categoryFields = "id, name, description, sort_order, created_at, updated_at"
)

type CategoryRepositoryInterface interface {
	GetCategories(ctx context.Context) ([]entities.FieldCategory, error)
	FindCategory(ctx context.Context, id uint64) (*entities.FieldCategory, error)
	CreateCategory(ctx context.Context, name, description string) (uint64, error)
	UpdateCategory(ctx context.Context, id uint64, name, description *string) error
	DeleteCategory(ctx context.Context, id uint64) error
}

type categoryRepository struct{ storage *pgxpool.Pool }

func NewCategoryRepository(storage *pgxpool.Pool) CategoryRepositoryInterface {
	return &categoryRepository{storage: storage}
}

func (r *categoryRepository) GetCategories(ctx context.Context) ([]entities.FieldCategory, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY sort_order, id", categoryFields, categoryTable)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]entities.FieldCategory, 0)
	for rows.Next() {
		var dbRow dbCategory
		if err := rows.Scan(&dbRow.ID, &dbRow.Name, &dbRow.Description, &dbRow.SortOrder, &dbRow.CreatedAt, &dbRow.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, dbRow.toEntity())
	}
	return categories, rows.Err()
}

func (r *categoryRepository) FindCategory(ctx context.Context, id uint64) (*entities.FieldCategory, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", categoryFields, categoryTable)
	var dbRow dbCategory
	err := r.storage.QueryRow(ctx, query, id).Scan(&dbRow.ID, &dbRow.Name, &dbRow.Description, &dbRow.SortOrder, &dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	category := dbRow.toEntity()
	return &category, nil
}

func (r *categoryRepository) CreateCategory(ctx context.Context, name, description string) (uint64, error) {
	// Новая категория встаёт в конец списка.
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, sort_order)
		VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM %s))
		RETURNING id`, categoryTable, categoryTable)

	var id uint64
	err := r.storage.QueryRow(ctx, query, name, description).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, apperrors.ErrDuplicateName
		}
		return 0, err
	}
	return id, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, id uint64, name, description *string) error {
	var setClauses []string
	var args []interface{}
	argId := 1

	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argId))
		args = append(args, *name)
		argId++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argId))
		args = append(args, *description)
		argId++
	}
	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", categoryTable, strings.Join(setClauses, ", "), argId)
	args = append(args, id)

	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicateName
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) DeleteCategory(ctx context.Context, id uint64) error {
	// Поля категории снесёт каскад по внешнему ключу.
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", categoryTable)
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
