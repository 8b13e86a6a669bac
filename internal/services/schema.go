package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"profile-system/internal/dto"
	"profile-system/internal/entities"
	"profile-system/internal/repositories"
	"profile-system/pkg/constants"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/utils"

	"go.uber.org/zap"
)

type SchemaServiceInterface interface {
	GetCategories(ctx context.Context) ([]dto.CategoryDTO, error)
	GetCategoryEntities(ctx context.Context) ([]entities.FieldCategory, error)
	FindCategory(ctx context.Context, id uint64) (*dto.CategoryDTO, error)
	CreateCategory(ctx context.Context, payload dto.CreateCategoryDTO) (*dto.CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateCategoryDTO) (*dto.CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uint64) error
	AddField(ctx context.Context, categoryID uint64, payload dto.CreateFieldDTO) (*dto.FieldDTO, error)
	UpdateField(ctx context.Context, fieldID uint64, payload dto.UpdateFieldDTO) (*dto.FieldDTO, error)
	DeleteField(ctx context.Context, fieldID uint64) error
	ReorderFields(ctx context.Context, categoryID uint64, orderedIDs []uint64) error
}

type SchemaService struct {
	categoryRepo repositories.CategoryRepositoryInterface
	fieldRepo    repositories.FieldRepositoryInterface
	cacheRepo    repositories.CacheRepositoryInterface
	logger       *zap.Logger
	cacheTTL     time.Duration
}

func NewSchemaService(
	categoryRepo repositories.CategoryRepositoryInterface,
	fieldRepo repositories.FieldRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) SchemaServiceInterface {
	return &SchemaService{
		categoryRepo: categoryRepo,
		fieldRepo:    fieldRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
		cacheTTL:     cacheTTL,
	}
}

// GetCategoryEntities собирает схему целиком (категории с полями).
// Схема читается на каждый рендер формы, поэтому живёт в Redis-кеше;
// любая мутация схемы кеш сбрасывает.
func (s *SchemaService) GetCategoryEntities(ctx context.Context) ([]entities.FieldCategory, error) {
	var categories []entities.FieldCategory

	cachedJSON, errGet := s.cacheRepo.Get(ctx, constants.CacheKeySchemaCategories)
	if errGet == nil {
		if err := json.Unmarshal([]byte(cachedJSON), &categories); err == nil {
			s.logger.Debug("SchemaService: Схема найдена в кеше")
			return categories, nil
		}
		s.logger.Warn("SchemaService: Ошибка при десериализации схемы из кеша", zap.Error(errGet))
	}

	categories, err := s.categoryRepo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	fields, err := s.fieldRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uint64][]entities.FieldDefinition)
	for _, f := range fields {
		byCategory[f.CategoryID] = append(byCategory[f.CategoryID], f)
	}
	for i := range categories {
		categories[i].Fields = byCategory[categories[i].ID]
	}

	if encoded, errMarshal := json.Marshal(categories); errMarshal == nil {
		if errSet := s.cacheRepo.Set(ctx, constants.CacheKeySchemaCategories, string(encoded), s.cacheTTL); errSet != nil {
			s.logger.Warn("SchemaService: Не удалось сохранить схему в кеш", zap.Error(errSet))
		}
	}

	return categories, nil
}

func (s *SchemaService) invalidateCache(ctx context.Context) {
	if err := s.cacheRepo.Del(ctx, constants.CacheKeySchemaCategories); err != nil {
		s.logger.Warn("SchemaService: Не удалось сбросить кеш схемы", zap.Error(err))
	}
}

func (s *SchemaService) GetCategories(ctx context.Context) ([]dto.CategoryDTO, error) {
	categories, err := s.GetCategoryEntities(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoryDTO, 0, len(categories))
	for i := range categories {
		result = append(result, dto.NewCategoryDTO(&categories[i]))
	}
	return result, nil
}

func (s *SchemaService) FindCategory(ctx context.Context, id uint64) (*dto.CategoryDTO, error) {
	category, err := s.categoryRepo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := s.fieldRepo.GetByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Fields = fields
	result := dto.NewCategoryDTO(category)
	return &result, nil
}

func (s *SchemaService) CreateCategory(ctx context.Context, payload dto.CreateCategoryDTO) (*dto.CategoryDTO, error) {
	id, err := s.categoryRepo.CreateCategory(ctx, strings.TrimSpace(payload.Name), payload.Description)
	if err != nil {
		s.logger.Error("SchemaService: Ошибка при создании категории", zap.String("name", payload.Name), zap.Error(err))
		return nil, err
	}
	s.invalidateCache(ctx)
	s.logger.Info("SchemaService: Категория создана", zap.Uint64("id", id), zap.String("name", payload.Name))
	return s.FindCategory(ctx, id)
}

// UpdateCategory: переименование не мигрирует сохранённые значения анкет -
// они хранятся по ID категории, поэтому миграция и не нужна.
func (s *SchemaService) UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateCategoryDTO) (*dto.CategoryDTO, error) {
	var name, description *string
	if payload.Name.Valid {
		name = utils.StringPtr(strings.TrimSpace(payload.Name.String))
	}
	if payload.Description.Valid {
		description = utils.StringPtr(payload.Description.String)
	}

	if err := s.categoryRepo.UpdateCategory(ctx, id, name, description); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return s.FindCategory(ctx, id)
}

func (s *SchemaService) DeleteCategory(ctx context.Context, id uint64) error {
	if err := s.categoryRepo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	s.logger.Info("SchemaService: Категория удалена вместе с полями", zap.Uint64("id", id))
	return nil
}

func (s *SchemaService) AddField(ctx context.Context, categoryID uint64, payload dto.CreateFieldDTO) (*dto.FieldDTO, error) {
	field, err := buildFieldEntity(categoryID, payload)
	if err != nil {
		return nil, err
	}

	id, err := s.fieldRepo.Create(ctx, field)
	if err != nil {
		s.logger.Error("SchemaService: Ошибка при добавлении поля",
			zap.Uint64("categoryID", categoryID), zap.String("name", payload.Name), zap.Error(err))
		return nil, err
	}
	s.invalidateCache(ctx)

	created, err := s.fieldRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := dto.NewFieldDTO(created)
	return &result, nil
}

func (s *SchemaService) UpdateField(ctx context.Context, fieldID uint64, payload dto.UpdateFieldDTO) (*dto.FieldDTO, error) {
	existing, err := s.fieldRepo.FindByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	patched := *existing
	if payload.Label.Valid {
		patched.Label = strings.TrimSpace(payload.Label.String)
	}
	if payload.Type.Valid && entities.FieldType(payload.Type.String) != existing.Type {
		patched.Type = entities.FieldType(payload.Type.String)
		// Тип и опции - связанная пара: смена типа обесценивает прежний список.
		patched.Options = nil
	}
	if payload.Placeholder.Valid {
		patched.Placeholder = payload.Placeholder.String
	}
	if payload.Validation != nil {
		patched.Rules = entities.ValidationRules{
			Required:  payload.Validation.Required,
			Min:       payload.Validation.Min,
			Max:       payload.Validation.Max,
			MinLength: payload.Validation.MinLength,
			MaxLength: payload.Validation.MaxLength,
			Pattern:   payload.Validation.Pattern,
			MaxFiles:  payload.Validation.MaxFiles,
		}
	}
	if payload.Options != nil {
		patched.Options = payload.Options
	}
	if payload.AcceptedTypes.Valid {
		patched.AcceptedTypes = []string{payload.AcceptedTypes.String}
	}
	if payload.IsVisible.Valid {
		patched.IsVisible = payload.IsVisible.Bool
	}
	if payload.IsEmployeeEditable.Valid {
		patched.IsEmployeeEditable = payload.IsEmployeeEditable.Bool
	}
	if payload.HrEditable.Valid {
		patched.HrEditable = payload.HrEditable.Bool
	}

	normalized, err := normalizeFieldEntity(patched)
	if err != nil {
		return nil, err
	}

	if err := s.fieldRepo.Update(ctx, fieldID, normalized); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)

	updated, err := s.fieldRepo.FindByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	result := dto.NewFieldDTO(updated)
	return &result, nil
}

func (s *SchemaService) DeleteField(ctx context.Context, fieldID uint64) error {
	if err := s.fieldRepo.Delete(ctx, fieldID); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *SchemaService) ReorderFields(ctx context.Context, categoryID uint64, orderedIDs []uint64) error {
	if _, err := s.categoryRepo.FindCategory(ctx, categoryID); err != nil {
		return err
	}
	if err := s.fieldRepo.ReorderFields(ctx, categoryID, orderedIDs); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// buildFieldEntity превращает payload в нормализованную сущность поля.
func buildFieldEntity(categoryID uint64, payload dto.CreateFieldDTO) (entities.FieldDefinition, error) {
	isVisible := true
	if payload.IsVisible != nil {
		isVisible = *payload.IsVisible
	}

	field := entities.FieldDefinition{
		CategoryID:  categoryID,
		Name:        strings.TrimSpace(payload.Name),
		Label:       strings.TrimSpace(payload.Label),
		Type:        entities.FieldType(payload.Type),
		Placeholder: payload.Placeholder,
		Rules: entities.ValidationRules{
			Required:  payload.Validation.Required,
			Min:       payload.Validation.Min,
			Max:       payload.Validation.Max,
			MinLength: payload.Validation.MinLength,
			MaxLength: payload.Validation.MaxLength,
			Pattern:   payload.Validation.Pattern,
			MaxFiles:  payload.Validation.MaxFiles,
		},
		Options:            payload.Options,
		AcceptedTypes:      []string{payload.AcceptedTypes},
		IsVisible:          isVisible,
		IsEmployeeEditable: payload.IsEmployeeEditable,
		HrEditable:         payload.HrEditable,
	}
	return normalizeFieldEntity(field)
}

// normalizeFieldEntity приводит определение к хранимому виду и проверяет
// согласованность правил. Возвращает InvalidInputError при бессмысленных правилах.
func normalizeFieldEntity(field entities.FieldDefinition) (entities.FieldDefinition, error) {
	if !field.Type.IsKnown() {
		return field, apperrors.NewInvalidInputError("неизвестный тип поля '%s'", field.Type)
	}
	if field.Label == "" {
		return field, apperrors.NewInvalidInputError("у поля должно быть непустое название")
	}

	if field.Rules.Min != nil && field.Rules.Max != nil && *field.Rules.Min > *field.Rules.Max {
		return field, apperrors.NewInvalidInputError("min не может быть больше max")
	}
	if field.Rules.MinLength != nil && field.Rules.MaxLength != nil && *field.Rules.MinLength > *field.Rules.MaxLength {
		return field, apperrors.NewInvalidInputError("min_length не может быть больше max_length")
	}

	if field.Type.IsChoice() {
		rawCount := len(field.Options)
		field.Options = NormalizeOptions(field.Options)
		if rawCount > 0 && len(field.Options) == 0 {
			return field, apperrors.NewInvalidInputError("список опций не содержит ни одного непустого значения")
		}
	} else {
		field.Options = nil
	}

	if field.Type.IsFile() {
		field.AcceptedTypes = NormalizeAcceptedTypes(strings.Join(field.AcceptedTypes, ","))
		if field.Rules.MaxFiles != nil && *field.Rules.MaxFiles < 1 {
			return field, apperrors.NewInvalidInputError("max_files должен быть не меньше 1")
		}
	} else {
		field.AcceptedTypes = nil
		field.Rules.MaxFiles = nil
	}

	if field.Rules.Pattern != "" {
		if field.Type != entities.FieldTypeText && field.Type != entities.FieldTypeTextarea {
			field.Rules.Pattern = ""
		} else if _, err := regexp.Compile(field.Rules.Pattern); err != nil {
			return field, apperrors.NewInvalidInputError("некорректное регулярное выражение: %v", err)
		}
	}

	return field, nil
}

// NormalizeOptions: trim, выброс пустых, дедупликация с сохранением порядка.
func NormalizeOptions(raw []string) []string {
	result := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, option := range raw {
		option = strings.TrimSpace(option)
		if option == "" || seen[option] {
			continue
		}
		seen[option] = true
		result = append(result, option)
	}
	return result
}

// NormalizeAcceptedTypes: "JPG, .png,," -> ["jpg","png"]; wildcard "image/*" сохраняется как есть.
func NormalizeAcceptedTypes(raw string) []string {
	result := make([]string, 0)
	seen := make(map[string]bool)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token != "image/*" {
			token = strings.ToLower(strings.TrimPrefix(token, "."))
		}
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		result = append(result, token)
	}
	return result
}
