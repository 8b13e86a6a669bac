package repositories

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"profile-system/internal/entities"
)

type ReportRepositoryInterface interface {
	GetProfileReport(ctx context.Context) ([]entities.ProfileReportItem, error)
}

type reportRepository struct{ storage *pgxpool.Pool }

func NewReportRepository(storage *pgxpool.Pool) ReportRepositoryInterface {
	return &reportRepository{storage: storage}
}

func (r *reportRepository) GetProfileReport(ctx context.Context) ([]entities.ProfileReportItem, error) {
	query, args, err := psql.Select(
		"id", "user_id", "employee_id", "joining_date", "status",
		"approval_status", "submitted_at", "approval_reviewed_at",
		"unlock_status", "jsonb_array_length(locked_fields) AS locked_count").
		From(profileTable).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]entities.ProfileReportItem, 0)
	for rows.Next() {
		var item entities.ProfileReportItem
		var employeeID, status sql.NullString
		var joiningDate, submittedAt, reviewedAt sql.NullTime

		if err := rows.Scan(&item.ProfileID, &item.UserID, &employeeID, &joiningDate, &status,
			&item.ApprovalStatus, &submittedAt, &reviewedAt, &item.UnlockStatus, &item.LockedCount); err != nil {
			return nil, err
		}

		item.EmployeeID = employeeID.String
		item.Status = status.String
		if joiningDate.Valid {
			item.JoiningDate = &joiningDate.Time
		}
		if submittedAt.Valid {
			item.SubmittedAt = &submittedAt.Time
		}
		if reviewedAt.Valid {
			item.ReviewedAt = &reviewedAt.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
