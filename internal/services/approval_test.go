package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"profile-system/internal/dto"
	"profile-system/internal/entities"
	apperrors "profile-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type approvalFixture struct {
	svc         ApprovalServiceInterface
	schemaSvc   SchemaServiceInterface
	profileRepo *fakeProfileRepo
	categoryID  uint64
	fieldIDs    map[string]uint64
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()
	ctx := context.Background()

	categoryRepo := newFakeCategoryRepo()
	fieldRepo := newFakeFieldRepo()
	cache := newFakeCache()
	profileRepo := newFakeProfileRepo()
	schemaSvc := NewSchemaService(categoryRepo, fieldRepo, cache, zap.NewNop(), time.Minute)
	svc := NewApprovalService(profileRepo, schemaSvc, zap.NewNop())

	category, err := schemaSvc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Личные данные"})
	require.NoError(t, err)

	fieldIDs := map[string]uint64{}
	for _, name := range []string{"full_name", "phone", "email"} {
		field, errAdd := schemaSvc.AddField(ctx, category.ID, dto.CreateFieldDTO{
			Name: name, Label: name, Type: "text",
		})
		require.NoError(t, errAdd)
		fieldIDs[name] = field.ID
	}

	return &approvalFixture{
		svc:         svc,
		schemaSvc:   schemaSvc,
		profileRepo: profileRepo,
		categoryID:  category.ID,
		fieldIDs:    fieldIDs,
	}
}

func (f *approvalFixture) seedProfile(userID uint64, values map[string]interface{}) *entities.EmployeeProfile {
	categoryKey := strconv.FormatUint(f.categoryID, 10)
	return f.profileRepo.add(entities.EmployeeProfile{
		UserID:       userID,
		CustomFields: map[string]map[string]interface{}{categoryKey: values},
	})
}

func TestApprovalService_Submit_ComputesLockedFields(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	// email пустой: он не должен попасть в locked_fields.
	f.seedProfile(10, map[string]interface{}{
		"full_name": "Иванов Иван",
		"phone":     "+992900000000",
		"email":     "",
	})

	result, err := f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, string(entities.ApprovalSubmitted), result.Approval.Status)
	assert.NotEmpty(t, result.Approval.SubmittedAt)

	assert.ElementsMatch(t,
		[]uint64{f.fieldIDs["full_name"], f.fieldIDs["phone"]},
		result.LockedFields,
		"блокируются только поля с непустым значением")
}

func TestApprovalService_Submit_FromSubmittedConflicts(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	f.seedProfile(10, map[string]interface{}{"full_name": "Иванов"})

	_, err := f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)

	_, err = f.svc.SubmitForApproval(ctx, 10)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "повторная отправка из submitted невозможна")

	// Конфликт не меняет состояние.
	profile, err := f.profileRepo.FindByUserID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, entities.ApprovalSubmitted, profile.Approval.Status)
}

func TestApprovalService_Submit_AfterRejection(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	seeded := f.seedProfile(10, map[string]interface{}{"full_name": "Иванов"})

	_, err := f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)

	_, err = f.svc.Review(ctx, seeded.ID, dto.ReviewDTO{Action: "reject", Comments: "неполные данные"})
	require.NoError(t, err)

	result, err := f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, string(entities.ApprovalSubmitted), result.Approval.Status, "отклонённую анкету можно отправить повторно")
}

func TestApprovalService_Review_Legality(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	seeded := f.seedProfile(10, map[string]interface{}{"full_name": "Иванов"})

	_, err := f.svc.Review(ctx, seeded.ID, dto.ReviewDTO{Action: "approve"})
	assert.ErrorIs(t, err, apperrors.ErrConflict, "черновик рассматривать нельзя")

	_, err = f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)

	result, err := f.svc.Review(ctx, seeded.ID, dto.ReviewDTO{Action: "approve", Comments: "ок"})
	require.NoError(t, err)
	assert.Equal(t, string(entities.ApprovalApproved), result.Approval.Status)
	assert.Equal(t, "ок", result.Approval.ReviewComments)

	_, err = f.svc.Review(ctx, seeded.ID, dto.ReviewDTO{Action: "reject"})
	assert.ErrorIs(t, err, apperrors.ErrConflict, "повторное решение по той же отправке невозможно")
}

func TestApprovalService_Reject_KeepsLockedFields(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	seeded := f.seedProfile(10, map[string]interface{}{"full_name": "Иванов"})

	_, err := f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)

	result, err := f.svc.Review(ctx, seeded.ID, dto.ReviewDTO{Action: "reject"})
	require.NoError(t, err)
	assert.Equal(t, string(entities.ApprovalRejected), result.Approval.Status)
	assert.NotEmpty(t, result.LockedFields, "отказ не очищает список отправленных полей")
}

func TestApprovalService_UnlockFlow(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	seeded := f.seedProfile(10, map[string]interface{}{"full_name": "Иванов"})

	// До отправки запросить разблокировку нельзя.
	_, err := f.svc.RequestUnlock(ctx, 10, dto.UnlockRequestDTO{Reason: "нужно исправить телефон"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, seeded.ID, dto.ReviewDTO{Action: "approve"})
	require.NoError(t, err)

	result, err := f.svc.RequestUnlock(ctx, 10, dto.UnlockRequestDTO{Reason: "нужно исправить телефон"})
	require.NoError(t, err)
	assert.Equal(t, string(entities.UnlockRequested), result.Unlock.Status)

	// Повторный запрос, пока висит текущий - конфликт.
	_, err = f.svc.RequestUnlock(ctx, 10, dto.UnlockRequestDTO{Reason: "ещё раз"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	result, err = f.svc.ReviewUnlock(ctx, seeded.ID, dto.ReviewUnlockDTO{Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, string(entities.UnlockApproved), result.Unlock.Status)

	// Решение принято, второй раз рассматривать нечего.
	_, err = f.svc.ReviewUnlock(ctx, seeded.ID, dto.ReviewUnlockDTO{Action: "reject"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestApprovalService_Resubmit_ResetsUnlock(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	seeded := f.seedProfile(10, map[string]interface{}{"full_name": "Иванов"})

	_, err := f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, seeded.ID, dto.ReviewDTO{Action: "reject"})
	require.NoError(t, err)

	result, err := f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, string(entities.UnlockNone), result.Unlock.Status,
		"новая отправка начинает цикл разблокировки заново")
}

func TestApprovalService_PendingLists(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	f.seedProfile(10, map[string]interface{}{"full_name": "Иванов"})
	second := f.seedProfile(20, map[string]interface{}{"full_name": "Петров"})

	_, err := f.svc.SubmitForApproval(ctx, 10)
	require.NoError(t, err)
	_, err = f.svc.SubmitForApproval(ctx, 20)
	require.NoError(t, err)

	pending, err := f.svc.ListPendingApprovals(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = f.svc.Review(ctx, second.ID, dto.ReviewDTO{Action: "approve"})
	require.NoError(t, err)
	_, err = f.svc.RequestUnlock(ctx, 20, dto.UnlockRequestDTO{Reason: "опечатка в ФИО"})
	require.NoError(t, err)

	pending, err = f.svc.ListPendingApprovals(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "согласованная анкета уходит из очереди")

	unlocks, err := f.svc.ListPendingUnlocks(ctx)
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	assert.Equal(t, second.ID, unlocks[0].ProfileID)
	assert.Equal(t, "опечатка в ФИО", unlocks[0].UnlockReason)
}

func TestApprovalService_Submit_NoProfile(t *testing.T) {
	f := newApprovalFixture(t)

	_, err := f.svc.SubmitForApproval(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
