package services

import (
	"context"
	"strconv"

	"profile-system/internal/dto"
	"profile-system/internal/entities"
	"profile-system/internal/repositories"
	"profile-system/pkg/validation"

	"go.uber.org/zap"
)

type ApprovalServiceInterface interface {
	SubmitForApproval(ctx context.Context, userID uint64) (*dto.ProfileDTO, error)
	Review(ctx context.Context, profileID uint64, payload dto.ReviewDTO) (*dto.ProfileDTO, error)
	RequestUnlock(ctx context.Context, userID uint64, payload dto.UnlockRequestDTO) (*dto.ProfileDTO, error)
	ReviewUnlock(ctx context.Context, profileID uint64, payload dto.ReviewUnlockDTO) (*dto.ProfileDTO, error)
	ListPendingApprovals(ctx context.Context) ([]dto.PendingProfileDTO, error)
	ListPendingUnlocks(ctx context.Context) ([]dto.PendingProfileDTO, error)
}

// ApprovalService двигает анкету по жизненному циклу согласования.
// Сами переходы атомарны на уровне репозитория (compare-and-set по статусу),
// сервис отвечает за подготовку перехода и пересчёт заблокированных полей.
type ApprovalService struct {
	profileRepo   repositories.ProfileRepositoryInterface
	schemaService SchemaServiceInterface
	logger        *zap.Logger
}

func NewApprovalService(
	profileRepo repositories.ProfileRepositoryInterface,
	schemaService SchemaServiceInterface,
	logger *zap.Logger,
) ApprovalServiceInterface {
	return &ApprovalService{
		profileRepo:   profileRepo,
		schemaService: schemaService,
		logger:        logger,
	}
}

// SubmitForApproval отправляет анкету на согласование. Набор locked_fields
// пересчитывается на момент отправки: в него попадают ID всех полей схемы,
// у которых в анкете есть непустое значение. Поля, оставленные пустыми,
// в список не входят и останутся дозаполняемыми.
func (s *ApprovalService) SubmitForApproval(ctx context.Context, userID uint64) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	lockedFields, err := s.computeLockedFields(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.SubmitForApproval(ctx, profile.ID, lockedFields); err != nil {
		s.logger.Warn("ApprovalService: Отправка на согласование отклонена",
			zap.Uint64("profileID", profile.ID),
			zap.String("status", string(profile.Approval.Status)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("ApprovalService: Анкета отправлена на согласование",
		zap.Uint64("profileID", profile.ID), zap.Int("lockedFields", len(lockedFields)))
	return s.find(ctx, profile.ID)
}

func (s *ApprovalService) Review(ctx context.Context, profileID uint64, payload dto.ReviewDTO) (*dto.ProfileDTO, error) {
	approved := payload.Action == "approve"
	if err := s.profileRepo.Review(ctx, profileID, approved, payload.Comments); err != nil {
		return nil, err
	}
	s.logger.Info("ApprovalService: Анкета рассмотрена",
		zap.Uint64("profileID", profileID), zap.String("action", payload.Action))
	return s.find(ctx, profileID)
}

func (s *ApprovalService) RequestUnlock(ctx context.Context, userID uint64, payload dto.UnlockRequestDTO) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.RequestUnlock(ctx, profile.ID, payload.Reason); err != nil {
		return nil, err
	}
	s.logger.Info("ApprovalService: Запрошена разблокировка анкеты", zap.Uint64("profileID", profile.ID))
	return s.find(ctx, profile.ID)
}

func (s *ApprovalService) ReviewUnlock(ctx context.Context, profileID uint64, payload dto.ReviewUnlockDTO) (*dto.ProfileDTO, error) {
	approved := payload.Action == "approve"
	if err := s.profileRepo.ReviewUnlock(ctx, profileID, approved, payload.Comments); err != nil {
		return nil, err
	}
	s.logger.Info("ApprovalService: Запрос на разблокировку рассмотрен",
		zap.Uint64("profileID", profileID), zap.String("action", payload.Action))
	return s.find(ctx, profileID)
}

func (s *ApprovalService) ListPendingApprovals(ctx context.Context) ([]dto.PendingProfileDTO, error) {
	profiles, err := s.profileRepo.ListPendingApprovals(ctx)
	if err != nil {
		return nil, err
	}
	return toPendingDTOs(profiles), nil
}

func (s *ApprovalService) ListPendingUnlocks(ctx context.Context) ([]dto.PendingProfileDTO, error) {
	profiles, err := s.profileRepo.ListPendingUnlocks(ctx)
	if err != nil {
		return nil, err
	}
	return toPendingDTOs(profiles), nil
}

func (s *ApprovalService) find(ctx context.Context, profileID uint64) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	result := dto.NewProfileDTO(profile)
	return &result, nil
}

func (s *ApprovalService) computeLockedFields(ctx context.Context, profile *entities.EmployeeProfile) ([]uint64, error) {
	categories, err := s.schemaService.GetCategoryEntities(ctx)
	if err != nil {
		return nil, err
	}

	lockedFields := make([]uint64, 0)
	for i := range categories {
		categoryKey := strconv.FormatUint(categories[i].ID, 10)
		stored := profile.FieldValues(categoryKey)
		if len(stored) == 0 {
			continue
		}
		for j := range categories[i].Fields {
			def := &categories[i].Fields[j]
			if !validation.IsMissing(stored[def.Name]) {
				lockedFields = append(lockedFields, def.ID)
			}
		}
	}
	return lockedFields, nil
}

func toPendingDTOs(profiles []entities.EmployeeProfile) []dto.PendingProfileDTO {
	result := make([]dto.PendingProfileDTO, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		item := dto.PendingProfileDTO{
			ProfileID:    p.ID,
			UserID:       p.UserID,
			EmployeeID:   p.BaseInfo.EmployeeID,
			UnlockReason: p.Unlock.Reason,
		}
		if p.Approval.SubmittedAt != nil {
			item.SubmittedAt = p.Approval.SubmittedAt.Local().Format("2006-01-02 15:04:05")
		}
		result = append(result, item)
	}
	return result
}
