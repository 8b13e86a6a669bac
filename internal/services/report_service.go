package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"profile-system/internal/entities"
	"profile-system/internal/repositories"
)

// ProfileReportItemDTO - строка отчёта в JSON-варианте выгрузки.
type ProfileReportItemDTO struct {
	ProfileID      uint64 `json:"profile_id"`
	UserID         uint64 `json:"user_id"`
	EmployeeID     string `json:"employee_id,omitempty"`
	JoiningDate    string `json:"joining_date,omitempty"`
	Status         string `json:"status,omitempty"`
	ApprovalStatus string `json:"approval_status"`
	SubmittedAt    string `json:"submitted_at,omitempty"`
	ReviewedAt     string `json:"reviewed_at,omitempty"`
	UnlockStatus   string `json:"unlock_status"`
	LockedCount    int    `json:"locked_count"`
}

type ReportServiceInterface interface {
	GetReportForExcel(ctx context.Context) ([]entities.ProfileReportItem, error)
	GetReportDTOs(ctx context.Context) ([]ProfileReportItemDTO, error)
}

type reportService struct {
	reportRepo repositories.ReportRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &reportService{reportRepo: reportRepo, logger: logger}
}

func (s *reportService) GetReportForExcel(ctx context.Context) ([]entities.ProfileReportItem, error) {
	return s.reportRepo.GetProfileReport(ctx)
}

func (s *reportService) GetReportDTOs(ctx context.Context) ([]ProfileReportItemDTO, error) {
	items, err := s.reportRepo.GetProfileReport(ctx)
	if err != nil {
		return nil, err
	}

	formatPtr := func(t *time.Time, layout string) string {
		if t == nil {
			return ""
		}
		return t.Format(layout)
	}

	dtos := make([]ProfileReportItemDTO, len(items))
	for i, item := range items {
		dtos[i] = ProfileReportItemDTO{
			ProfileID:      item.ProfileID,
			UserID:         item.UserID,
			EmployeeID:     item.EmployeeID,
			JoiningDate:    formatPtr(item.JoiningDate, "2006-01-02"),
			Status:         item.Status,
			ApprovalStatus: item.ApprovalStatus,
			SubmittedAt:    formatPtr(item.SubmittedAt, time.RFC3339),
			ReviewedAt:     formatPtr(item.ReviewedAt, time.RFC3339),
			UnlockStatus:   item.UnlockStatus,
			LockedCount:    item.LockedCount,
		}
	}
	return dtos, nil
}
