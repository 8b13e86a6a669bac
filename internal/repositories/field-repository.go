package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"profile-system/internal/entities"
	apperrors "profile-system/pkg/errors"
)

const (
	fieldTable   = "field_definitions"
	fieldColumns = `id, category_id, name, label, "type", placeholder, validation, options, accepted_types, is_visible, is_employee_editable, hr_editable, sort_order, created_at, updated_at`
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type FieldRepositoryInterface interface {
	GetAll(ctx context.Context) ([]entities.FieldDefinition, error)
	GetByCategory(ctx context.Context, categoryID uint64) ([]entities.FieldDefinition, error)
	FindByID(ctx context.Context, id uint64) (*entities.FieldDefinition, error)
	Create(ctx context.Context, f entities.FieldDefinition) (uint64, error)
	Update(ctx context.Context, id uint64, f entities.FieldDefinition) error
	Delete(ctx context.Context, id uint64) error
	ReorderFields(ctx context.Context, categoryID uint64, orderedIDs []uint64) error
}

type fieldRepository struct {
	storage *pgxpool.Pool
	tx      TxManagerInterface
	logger  *zap.Logger
}

func NewFieldRepository(storage *pgxpool.Pool, logger *zap.Logger) FieldRepositoryInterface {
	return &fieldRepository{storage: storage, tx: NewTxManager(storage), logger: logger}
}

// scanRow - универсальное сканирование одного определения поля
func (r *fieldRepository) scanRow(row pgx.Row) (*entities.FieldDefinition, error) {
	var f entities.FieldDefinition
	var placeholder sql.NullString
	var rulesJSON, optionsJSON, acceptedJSON []byte
	var updatedAt sql.NullTime
	var fieldType string

	err := row.Scan(
		&f.ID, &f.CategoryID, &f.Name, &f.Label, &fieldType, &placeholder,
		&rulesJSON, &optionsJSON, &acceptedJSON,
		&f.IsVisible, &f.IsEmployeeEditable, &f.HrEditable,
		&f.SortOrder, &f.CreatedAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	f.Type = entities.FieldType(fieldType)
	if placeholder.Valid {
		f.Placeholder = placeholder.String
	}
	if updatedAt.Valid {
		f.UpdatedAt = updatedAt.Time
	}
	if err := json.Unmarshal(rulesJSON, &f.Rules); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(optionsJSON, &f.Options); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(acceptedJSON, &f.AcceptedTypes); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fieldRepository) selectFields() sq.SelectBuilder {
	return psql.Select(fieldColumns).From(fieldTable)
}

func (r *fieldRepository) queryList(ctx context.Context, builder sq.SelectBuilder) ([]entities.FieldDefinition, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]entities.FieldDefinition, 0)
	for rows.Next() {
		f, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, *f)
	}
	return fields, rows.Err()
}

func (r *fieldRepository) GetAll(ctx context.Context) ([]entities.FieldDefinition, error) {
	return r.queryList(ctx, r.selectFields().OrderBy("category_id", "sort_order", "id"))
}

func (r *fieldRepository) GetByCategory(ctx context.Context, categoryID uint64) ([]entities.FieldDefinition, error) {
	return r.queryList(ctx, r.selectFields().Where(sq.Eq{"category_id": categoryID}).OrderBy("sort_order", "id"))
}

func (r *fieldRepository) FindByID(ctx context.Context, id uint64) (*entities.FieldDefinition, error) {
	query, args, err := r.selectFields().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return r.scanRow(r.storage.QueryRow(ctx, query, args...))
}

func (r *fieldRepository) Create(ctx context.Context, f entities.FieldDefinition) (uint64, error) {
	rulesJSON, optionsJSON, acceptedJSON, err := marshalFieldJSON(f)
	if err != nil {
		return 0, err
	}

	query, args, err := psql.Insert(fieldTable).
		Columns("category_id", "name", "label", `"type"`, "placeholder",
			"validation", "options", "accepted_types",
			"is_visible", "is_employee_editable", "hr_editable", "sort_order").
		Values(f.CategoryID, f.Name, f.Label, string(f.Type), f.Placeholder,
			rulesJSON, optionsJSON, acceptedJSON,
			f.IsVisible, f.IsEmployeeEditable, f.HrEditable,
			sq.Expr("(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM field_definitions WHERE category_id = ?)", f.CategoryID)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return 0, apperrors.ErrDuplicateName
			case "23503":
				return 0, apperrors.ErrNotFound
			}
		}
		return 0, err
	}
	return id, nil
}

func (r *fieldRepository) Update(ctx context.Context, id uint64, f entities.FieldDefinition) error {
	rulesJSON, optionsJSON, acceptedJSON, err := marshalFieldJSON(f)
	if err != nil {
		return err
	}

	query, args, err := psql.Update(fieldTable).
		Set("name", f.Name).
		Set("label", f.Label).
		Set(`"type"`, string(f.Type)).
		Set("placeholder", f.Placeholder).
		Set("validation", rulesJSON).
		Set("options", optionsJSON).
		Set("accepted_types", acceptedJSON).
		Set("is_visible", f.IsVisible).
		Set("is_employee_editable", f.IsEmployeeEditable).
		Set("hr_editable", f.HrEditable).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

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

func (r *fieldRepository) Delete(ctx context.Context, id uint64) error {
	query, args, err := psql.Delete(fieldTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReorderFields применяет новый порядок внутри категории.
// Набор идентификаторов должен в точности совпадать с полями категории:
// никаких частичных перестановок и чужих полей - иначе ErrInvalidOrder,
// порядок в БД не меняется.
func (r *fieldRepository) ReorderFields(ctx context.Context, categoryID uint64, orderedIDs []uint64) error {
	return r.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := lockCategoryFieldIDs(ctx, tx, categoryID)
		if err != nil {
			return err
		}

		if len(existing) != len(orderedIDs) {
			return apperrors.ErrInvalidOrder
		}
		seen := make(map[uint64]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if !existing[id] || seen[id] {
				return apperrors.ErrInvalidOrder
			}
			seen[id] = true
		}

		for position, id := range orderedIDs {
			if _, err := tx.Exec(ctx,
				"UPDATE field_definitions SET sort_order = $1, updated_at = NOW() WHERE id = $2", position+1, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// lockCategoryFieldIDs держит поля категории под FOR UPDATE до конца транзакции.
func lockCategoryFieldIDs(ctx context.Context, q Querier, categoryID uint64) (map[uint64]bool, error) {
	rows, err := q.Query(ctx,
		"SELECT id FROM field_definitions WHERE category_id = $1 FOR UPDATE", categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

func marshalFieldJSON(f entities.FieldDefinition) (rules, options, accepted []byte, err error) {
	if rules, err = json.Marshal(f.Rules); err != nil {
		return nil, nil, nil, err
	}
	if f.Options == nil {
		f.Options = []string{}
	}
	if options, err = json.Marshal(f.Options); err != nil {
		return nil, nil, nil, err
	}
	if f.AcceptedTypes == nil {
		f.AcceptedTypes = []string{}
	}
	if accepted, err = json.Marshal(f.AcceptedTypes); err != nil {
		return nil, nil, nil, err
	}
	return rules, options, accepted, nil
}
