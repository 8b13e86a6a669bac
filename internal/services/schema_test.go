package services

import (
	"context"
	"testing"
	"time"

	"profile-system/internal/dto"
	"profile-system/internal/entities"
	"profile-system/pkg/constants"
	apperrors "profile-system/pkg/errors"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSchemaFixture() (SchemaServiceInterface, *fakeCategoryRepo, *fakeFieldRepo, *fakeCache) {
	categoryRepo := newFakeCategoryRepo()
	fieldRepo := newFakeFieldRepo()
	cache := newFakeCache()
	svc := NewSchemaService(categoryRepo, fieldRepo, cache, zap.NewNop(), time.Minute)
	return svc, categoryRepo, fieldRepo, cache
}

func TestNormalizeOptions(t *testing.T) {
	got := NormalizeOptions([]string{" Женат ", "", "Холост", "Женат", "   "})
	assert.Equal(t, []string{"Женат", "Холост"}, got, "trim, выброс пустых, дедупликация с сохранением порядка")

	assert.Empty(t, NormalizeOptions([]string{" ", ""}))
	assert.Empty(t, NormalizeOptions(nil))
}

func TestNormalizeAcceptedTypes(t *testing.T) {
	got := NormalizeAcceptedTypes("JPG, .png,, .JPG ,pdf")
	assert.Equal(t, []string{"jpg", "png", "pdf"}, got)

	got = NormalizeAcceptedTypes("image/*, jpg")
	assert.Equal(t, []string{"image/*", "jpg"}, got, "wildcard сохраняется как есть")

	assert.Empty(t, NormalizeAcceptedTypes(""))
}

func TestSchemaService_CreateCategory_DuplicateName(t *testing.T) {
	svc, _, _, _ := newSchemaFixture()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Документы"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Документы"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)
}

func TestSchemaService_AddField_Normalization(t *testing.T) {
	svc, _, fieldRepo, _ := newSchemaFixture()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Личные данные"})
	require.NoError(t, err)

	field, err := svc.AddField(ctx, category.ID, dto.CreateFieldDTO{
		Name:    "marital_status",
		Label:   "Семейное положение",
		Type:    "select",
		Options: []string{" Женат ", "", "Холост", "Женат"},
	})
	require.NoError(t, err)

	stored, err := fieldRepo.FindByID(ctx, field.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Женат", "Холост"}, stored.Options)
	assert.Equal(t, 1, stored.SortOrder)
}

func TestSchemaService_AddField_InvalidRules(t *testing.T) {
	svc, _, _, _ := newSchemaFixture()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Разное"})
	require.NoError(t, err)

	minV, maxV := 10.0, 5.0
	_, err = svc.AddField(ctx, category.ID, dto.CreateFieldDTO{
		Name: "experience", Label: "Стаж", Type: "number",
		Validation: dto.ValidationRulesDTO{Min: &minV, Max: &maxV},
	})
	var invalidInput *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &invalidInput, "min > max должен отклоняться")

	_, err = svc.AddField(ctx, category.ID, dto.CreateFieldDTO{
		Name: "marital_status", Label: "Семейное положение", Type: "select",
		Options: []string{"  ", ""},
	})
	assert.ErrorAs(t, err, &invalidInput, "опции, схлопнувшиеся в пустоту, должны отклоняться")

	_, err = svc.AddField(ctx, category.ID, dto.CreateFieldDTO{
		Name: "comment", Label: "Комментарий", Type: "text",
		Validation: dto.ValidationRulesDTO{Pattern: "[unclosed"},
	})
	assert.ErrorAs(t, err, &invalidInput, "некомпилируемый шаблон должен отклоняться")
}

func TestSchemaService_AddField_DropsIrrelevantRules(t *testing.T) {
	svc, _, fieldRepo, _ := newSchemaFixture()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Разное"})
	require.NoError(t, err)

	maxFiles := 3
	field, err := svc.AddField(ctx, category.ID, dto.CreateFieldDTO{
		Name: "comment", Label: "Комментарий", Type: "text",
		Options:       []string{"лишняя опция"},
		AcceptedTypes: "jpg,png",
		Validation:    dto.ValidationRulesDTO{MaxFiles: &maxFiles},
	})
	require.NoError(t, err)

	stored, err := fieldRepo.FindByID(ctx, field.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Options, "опции у нетипизированного выбором поля отбрасываются")
	assert.Empty(t, stored.AcceptedTypes)
	assert.Nil(t, stored.Rules.MaxFiles)
}

func TestSchemaService_UpdateField_TypeChangeResetsOptions(t *testing.T) {
	svc, _, fieldRepo, _ := newSchemaFixture()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Разное"})
	require.NoError(t, err)

	field, err := svc.AddField(ctx, category.ID, dto.CreateFieldDTO{
		Name: "marital_status", Label: "Семейное положение", Type: "select",
		Options: []string{"Женат", "Холост"},
	})
	require.NoError(t, err)

	_, err = svc.UpdateField(ctx, field.ID, dto.UpdateFieldDTO{
		Type: null.StringFrom("text"),
	})
	require.NoError(t, err)

	stored, err := fieldRepo.FindByID(ctx, field.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.FieldTypeText, stored.Type)
	assert.Empty(t, stored.Options, "смена типа обнуляет опции")
}

func TestSchemaService_ReorderFields(t *testing.T) {
	svc, _, _, _ := newSchemaFixture()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Разное"})
	require.NoError(t, err)

	first, err := svc.AddField(ctx, category.ID, dto.CreateFieldDTO{Name: "a", Label: "А", Type: "text"})
	require.NoError(t, err)
	second, err := svc.AddField(ctx, category.ID, dto.CreateFieldDTO{Name: "b", Label: "Б", Type: "text"})
	require.NoError(t, err)

	require.NoError(t, svc.ReorderFields(ctx, category.ID, []uint64{second.ID, first.ID}))

	reloaded, err := svc.FindCategory(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Fields, 2)
	assert.Equal(t, second.ID, reloaded.Fields[0].ID)
	assert.Equal(t, first.ID, reloaded.Fields[1].ID)

	err = svc.ReorderFields(ctx, category.ID, []uint64{first.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrder, "неполный набор ID отклоняется")

	err = svc.ReorderFields(ctx, category.ID, []uint64{first.ID, first.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrder, "повторы отклоняются")
}

func TestSchemaService_CacheInvalidation(t *testing.T) {
	svc, _, _, cache := newSchemaFixture()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Разное"})
	require.NoError(t, err)

	_, err = svc.GetCategories(ctx)
	require.NoError(t, err)
	_, cached := cache.store[constants.CacheKeySchemaCategories]
	assert.True(t, cached, "после чтения схема должна осесть в кеше")

	_, err = svc.AddField(ctx, category.ID, dto.CreateFieldDTO{Name: "a", Label: "А", Type: "text"})
	require.NoError(t, err)
	_, cached = cache.store[constants.CacheKeySchemaCategories]
	assert.False(t, cached, "мутация схемы сбрасывает кеш")
}
