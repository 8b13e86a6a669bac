package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"profile-system/internal/entities"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	profileTable  = "employee_profiles"
	profileFields = `id, user_id, employee_id, joining_date, status, custom_fields, locked_fields,
		approval_status, submitted_at, approval_reviewed_at, review_comments,
		unlock_status, unlock_reason, unlock_reviewed_at, unlock_review_comments,
		created_at, updated_at`
)

type dbProfile struct {
	ID                   uint64
	UserID               uint64
	EmployeeID           sql.NullString
	JoiningDate          sql.NullTime
	Status               sql.NullString
	CustomFields         []byte
	LockedFields         []byte
	ApprovalStatus       string
	SubmittedAt          sql.NullTime
	ApprovalReviewedAt   sql.NullTime
	ReviewComments       sql.NullString
	UnlockStatus         string
	UnlockReason         sql.NullString
	UnlockReviewedAt     sql.NullTime
	UnlockReviewComments sql.NullString
	CreatedAt            time.Time
	UpdatedAt            sql.NullTime
}

func (db *dbProfile) toEntity() (*entities.EmployeeProfile, error) {
	p := &entities.EmployeeProfile{
		ID:     db.ID,
		UserID: db.UserID,
		BaseInfo: entities.BaseInfo{
			EmployeeID:  utils.NullStringToString(db.EmployeeID),
			JoiningDate: utils.NullTimeToPtr(db.JoiningDate),
			Status:      utils.NullStringToString(db.Status),
		},
		Approval: entities.ApprovalStatus{
			Status:         entities.ApprovalState(db.ApprovalStatus),
			SubmittedAt:    utils.NullTimeToPtr(db.SubmittedAt),
			ReviewedAt:     utils.NullTimeToPtr(db.ApprovalReviewedAt),
			ReviewComments: utils.NullStringToString(db.ReviewComments),
		},
		Unlock: entities.UnlockStatus{
			Status:         entities.UnlockState(db.UnlockStatus),
			Reason:         utils.NullStringToString(db.UnlockReason),
			ReviewedAt:     utils.NullTimeToPtr(db.UnlockReviewedAt),
			ReviewComments: utils.NullStringToString(db.UnlockReviewComments),
		},
		CreatedAt: db.CreatedAt,
	}
	if db.UpdatedAt.Valid {
		p.UpdatedAt = db.UpdatedAt.Time
	}
	if len(db.CustomFields) > 0 {
		if err := json.Unmarshal(db.CustomFields, &p.CustomFields); err != nil {
			return nil, fmt.Errorf("повреждённый custom_fields у анкеты %d: %w", db.ID, err)
		}
	}
	if len(db.LockedFields) > 0 {
		if err := json.Unmarshal(db.LockedFields, &p.LockedFields); err != nil {
			return nil, fmt.Errorf("повреждённый locked_fields у анкеты %d: %w", db.ID, err)
		}
	}
	return p, nil
}

type ProfileRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.EmployeeProfile, error)
	FindByUserID(ctx context.Context, userID uint64) (*entities.EmployeeProfile, error)
	GetAll(ctx context.Context, limit uint64, offset uint64) ([]entities.EmployeeProfile, uint64, error)
	UpsertBaseInfo(ctx context.Context, userID uint64, info entities.BaseInfo) (*entities.EmployeeProfile, error)
	SaveCategoryValues(ctx context.Context, userID uint64, categoryKey string, values map[string]interface{}) error
	SubmitForApproval(ctx context.Context, profileID uint64, lockedFields []uint64) error
	Review(ctx context.Context, profileID uint64, approved bool, comments string) error
	RequestUnlock(ctx context.Context, profileID uint64, reason string) error
	ReviewUnlock(ctx context.Context, profileID uint64, approved bool, comments string) error
	ListPendingApprovals(ctx context.Context) ([]entities.EmployeeProfile, error)
	ListPendingUnlocks(ctx context.Context) ([]entities.EmployeeProfile, error)
}

type profileRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewProfileRepository(storage *pgxpool.Pool, logger *zap.Logger) ProfileRepositoryInterface {
	return &profileRepository{storage: storage, logger: logger}
}

func (r *profileRepository) scanRow(row pgx.Row) (*entities.EmployeeProfile, error) {
	var db dbProfile
	err := row.Scan(
		&db.ID, &db.UserID, &db.EmployeeID, &db.JoiningDate, &db.Status,
		&db.CustomFields, &db.LockedFields,
		&db.ApprovalStatus, &db.SubmittedAt, &db.ApprovalReviewedAt, &db.ReviewComments,
		&db.UnlockStatus, &db.UnlockReason, &db.UnlockReviewedAt, &db.UnlockReviewComments,
		&db.CreatedAt, &db.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return db.toEntity()
}

func (r *profileRepository) FindByID(ctx context.Context, id uint64) (*entities.EmployeeProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", profileFields, profileTable)
	return r.scanRow(r.storage.QueryRow(ctx, query, id))
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uint64) (*entities.EmployeeProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1", profileFields, profileTable)
	return r.scanRow(r.storage.QueryRow(ctx, query, userID))
}

func (r *profileRepository) GetAll(ctx context.Context, limit uint64, offset uint64) ([]entities.EmployeeProfile, uint64, error) {
	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", profileTable)
	if err := r.storage.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта анкет: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2", profileFields, profileTable)
	profiles, err := r.queryList(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *profileRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]entities.EmployeeProfile, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]entities.EmployeeProfile, 0)
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) UpsertBaseInfo(ctx context.Context, userID uint64, info entities.BaseInfo) (*entities.EmployeeProfile, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, employee_id, joining_date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			employee_id = EXCLUDED.employee_id,
			joining_date = EXCLUDED.joining_date,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING %s`, profileTable, profileFields)

	var joiningDate interface{}
	if info.JoiningDate != nil {
		joiningDate = *info.JoiningDate
	}
	return r.scanRow(r.storage.QueryRow(ctx, query, userID, info.EmployeeID, joiningDate, info.Status))
}

// SaveCategoryValues сохраняет значения одной категории как независимый
// под-документ custom_fields. Анкета создаётся неявно при первой записи.
func (r *profileRepository) SaveCategoryValues(ctx context.Context, userID uint64, categoryKey string, values map[string]interface{}) error {
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, custom_fields)
		VALUES ($1, jsonb_build_object($2::text, $3::jsonb))
		ON CONFLICT (user_id) DO UPDATE SET
			custom_fields = %s.custom_fields || jsonb_build_object($2::text, $3::jsonb),
			updated_at = NOW()`, profileTable, profileTable)

	_, err = r.storage.Exec(ctx, query, userID, categoryKey, valuesJSON)
	return err
}

// casUpdate выполняет условное обновление статуса. Ноль затронутых строк
// означает либо отсутствие анкеты (NotFound), либо гонку состояний (Conflict) -
// молчаливая перезапись чужого перехода исключена.
func (r *profileRepository) casUpdate(ctx context.Context, profileID uint64, query string, args ...interface{}) error {
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	checkQuery := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", profileTable)
	if err := r.storage.QueryRow(ctx, checkQuery, profileID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrConflict
}

func (r *profileRepository) SubmitForApproval(ctx context.Context, profileID uint64, lockedFields []uint64) error {
	if lockedFields == nil {
		lockedFields = []uint64{}
	}
	lockedJSON, err := json.Marshal(lockedFields)
	if err != nil {
		return err
	}

	// Повторная отправка начинает цикл заново: статус разблокировки сбрасывается.
	query := fmt.Sprintf(`
		UPDATE %s SET
			approval_status = 'submitted',
			submitted_at = NOW(),
			approval_reviewed_at = NULL,
			review_comments = '',
			locked_fields = $2::jsonb,
			unlock_status = 'none',
			unlock_reason = '',
			unlock_reviewed_at = NULL,
			unlock_review_comments = '',
			updated_at = NOW()
		WHERE id = $1 AND approval_status IN ('draft', 'rejected')`, profileTable)

	return r.casUpdate(ctx, profileID, query, profileID, lockedJSON)
}

func (r *profileRepository) Review(ctx context.Context, profileID uint64, approved bool, comments string) error {
	newStatus := "rejected"
	if approved {
		newStatus = "approved"
	}

	// Отказ не очищает locked_fields: заполненные данные остаются видимыми
	// до правок и повторной отправки владельцем.
	query := fmt.Sprintf(`
		UPDATE %s SET
			approval_status = $2,
			approval_reviewed_at = NOW(),
			review_comments = $3,
			updated_at = NOW()
		WHERE id = $1 AND approval_status = 'submitted'`, profileTable)

	return r.casUpdate(ctx, profileID, query, profileID, newStatus, comments)
}

func (r *profileRepository) RequestUnlock(ctx context.Context, profileID uint64, reason string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			unlock_status = 'requested',
			unlock_reason = $2,
			unlock_reviewed_at = NULL,
			unlock_review_comments = '',
			updated_at = NOW()
		WHERE id = $1
			AND approval_status IN ('submitted', 'approved')
			AND unlock_status <> 'requested'`, profileTable)

	return r.casUpdate(ctx, profileID, query, profileID, reason)
}

func (r *profileRepository) ReviewUnlock(ctx context.Context, profileID uint64, approved bool, comments string) error {
	newStatus := "rejected"
	if approved {
		newStatus = "approved"
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			unlock_status = $2,
			unlock_reviewed_at = NOW(),
			unlock_review_comments = $3,
			updated_at = NOW()
		WHERE id = $1 AND unlock_status = 'requested'`, profileTable)

	return r.casUpdate(ctx, profileID, query, profileID, newStatus, comments)
}

func (r *profileRepository) ListPendingApprovals(ctx context.Context) ([]entities.EmployeeProfile, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE approval_status = 'submitted' ORDER BY submitted_at", profileFields, profileTable)
	return r.queryList(ctx, query)
}

func (r *profileRepository) ListPendingUnlocks(ctx context.Context) ([]entities.EmployeeProfile, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE unlock_status = 'requested' ORDER BY updated_at", profileFields, profileTable)
	return r.queryList(ctx, query)
}
