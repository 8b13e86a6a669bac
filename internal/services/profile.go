package services

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"profile-system/internal/authz"
	"profile-system/internal/dto"
	"profile-system/internal/entities"
	"profile-system/internal/repositories"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/filestorage"
	"profile-system/pkg/validation"

	"go.uber.org/zap"
)

// CodeFieldLocked помечает отказ записи в заблокированное или чужое поле.
const CodeFieldLocked = "field_locked"

type ProfileServiceInterface interface {
	Find(ctx context.Context, profileID uint64) (*dto.ProfileDTO, error)
	FindByUserID(ctx context.Context, userID uint64) (*dto.ProfileDTO, error)
	GetAll(ctx context.Context, limit uint64, offset uint64) ([]dto.ProfileDTO, uint64, error)
	UpsertBaseInfo(ctx context.Context, userID uint64, payload dto.UpsertBaseInfoDTO) (*dto.ProfileDTO, error)
	GetCategoriesWithData(ctx context.Context, userID uint64, role string) ([]dto.CategoryWithDataDTO, error)
	SaveCategoryFields(ctx context.Context, userID uint64, role string, categoryID uint64, values map[string]interface{}, files map[string][]*multipart.FileHeader) error
	SubmitAll(ctx context.Context, userID uint64, role string, payload dto.SubmitAllDTO) (*dto.SaveResultDTO, error)
}

type ProfileService struct {
	profileRepo   repositories.ProfileRepositoryInterface
	schemaService SchemaServiceInterface
	fileStorage   filestorage.FileStorageInterface
	logger        *zap.Logger
}

func NewProfileService(
	profileRepo repositories.ProfileRepositoryInterface,
	schemaService SchemaServiceInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) ProfileServiceInterface {
	return &ProfileService{
		profileRepo:   profileRepo,
		schemaService: schemaService,
		fileStorage:   fileStorage,
		logger:        logger,
	}
}

func (s *ProfileService) Find(ctx context.Context, profileID uint64) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	result := dto.NewProfileDTO(profile)
	return &result, nil
}

func (s *ProfileService) FindByUserID(ctx context.Context, userID uint64) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := dto.NewProfileDTO(profile)
	return &result, nil
}

func (s *ProfileService) GetAll(ctx context.Context, limit uint64, offset uint64) ([]dto.ProfileDTO, uint64, error) {
	profiles, total, err := s.profileRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.ProfileDTO, 0, len(profiles))
	for i := range profiles {
		result = append(result, dto.NewProfileDTO(&profiles[i]))
	}
	return result, total, nil
}

func (s *ProfileService) UpsertBaseInfo(ctx context.Context, userID uint64, payload dto.UpsertBaseInfoDTO) (*dto.ProfileDTO, error) {
	info := entities.BaseInfo{
		EmployeeID: payload.EmployeeID,
		Status:     payload.Status,
	}
	if payload.JoiningDate != "" {
		parsed, err := time.Parse("2006-01-02", payload.JoiningDate)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("неверный формат даты приёма: %s", payload.JoiningDate)
		}
		info.JoiningDate = &parsed
	}

	profile, err := s.profileRepo.UpsertBaseInfo(ctx, userID, info)
	if err != nil {
		s.logger.Error("ProfileService: Ошибка при сохранении базового блока",
			zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}
	result := dto.NewProfileDTO(profile)
	return &result, nil
}

// GetCategoriesWithData сливает схему со значениями анкеты пользователя.
// Невидимые для роли поля выбрасываются из ответа целиком, а не приходят пустыми.
func (s *ProfileService) GetCategoriesWithData(ctx context.Context, userID uint64, role string) ([]dto.CategoryWithDataDTO, error) {
	categories, err := s.schemaService.GetCategoryEntities(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	// Отсутствующая анкета эквивалентна пустому черновику.

	result := make([]dto.CategoryWithDataDTO, 0, len(categories))
	for i := range categories {
		category := &categories[i]
		categoryKey := strconv.FormatUint(category.ID, 10)

		var stored map[string]interface{}
		if profile != nil {
			stored = profile.FieldValues(categoryKey)
		}

		fields := make([]dto.FieldWithValueDTO, 0, len(category.Fields))
		for j := range category.Fields {
			def := &category.Fields[j]
			if !authz.IsFieldVisible(def, role) {
				continue
			}
			fields = append(fields, dto.FieldWithValueDTO{
				FieldDTO: dto.NewFieldDTO(def),
				Value:    stored[def.Name],
				Editable: authz.IsFieldEditable(def, profile, role),
			})
		}

		result = append(result, dto.CategoryWithDataDTO{
			ID:          category.ID,
			Name:        category.Name,
			Description: category.Description,
			SortOrder:   category.SortOrder,
			Fields:      fields,
		})
	}
	return result, nil
}

// SaveCategoryFields - частичное сохранение одной категории.
// Порядок проверок на каждое присланное поле фиксированный: сначала право
// записи, затем required, затем правила типа. Сохранение целиком отклоняется,
// если хоть одно поле не прошло.
func (s *ProfileService) SaveCategoryFields(ctx context.Context, userID uint64, role string, categoryID uint64, values map[string]interface{}, files map[string][]*multipart.FileHeader) error {
	category, err := s.findCategory(ctx, categoryID)
	if err != nil {
		return err
	}

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	byName := make(map[string]*entities.FieldDefinition, len(category.Fields))
	for i := range category.Fields {
		byName[category.Fields[i].Name] = &category.Fields[i]
	}

	for key := range values {
		if _, ok := byName[key]; !ok {
			return apperrors.NewInvalidInputError("поле '%s' отсутствует в категории '%s'", key, category.Name)
		}
	}
	for key := range files {
		if _, ok := byName[key]; !ok {
			return apperrors.NewInvalidInputError("поле '%s' отсутствует в категории '%s'", key, category.Name)
		}
	}

	var fieldErrors []*validation.FieldError

	for name, def := range byName {
		value, hasValue := values[name]
		newFiles := files[name]
		if !hasValue && len(newFiles) == 0 {
			continue
		}

		if !authz.IsFieldEditable(def, profile, role) {
			fieldErrors = append(fieldErrors, &validation.FieldError{
				FieldID: def.ID,
				Field:   def.Name,
				Code:    CodeFieldLocked,
				Message: apperrors.ErrFieldLocked.Error(),
			})
			continue
		}

		if def.Type.IsFile() {
			kept := keptFilePaths(value)
			candidates := make([]validation.FileCandidate, 0, len(newFiles))
			for _, header := range newFiles {
				candidates = append(candidates, validation.FileCandidate{
					FileName:    header.Filename,
					SizeBytes:   header.Size,
					ContentType: header.Header.Get("Content-Type"),
				})
			}
			if def.Rules.Required && len(kept) == 0 && len(candidates) == 0 {
				fieldErrors = append(fieldErrors, &validation.FieldError{
					FieldID: def.ID,
					Field:   def.Name,
					Code:    validation.CodeRequired,
					Message: "обязательное поле не заполнено",
				})
				continue
			}
			if fieldErr := validation.ValidateFiles(def, candidates, len(kept)); fieldErr != nil {
				fieldErrors = append(fieldErrors, fieldErr)
			}
			continue
		}

		if fieldErr := validation.ValidateField(def, value); fieldErr != nil {
			fieldErrors = append(fieldErrors, fieldErr)
		}
	}

	if len(fieldErrors) > 0 {
		return apperrors.NewHttpError(http.StatusUnprocessableEntity, "Анкета содержит ошибки", nil,
			map[string]interface{}{"categoryID": categoryID}).WithDetails(fieldErrors)
	}

	merged := make(map[string]interface{}, len(values))
	for key, value := range values {
		merged[key] = value
	}

	// Файлы пишутся на диск только после того, как вся категория прошла проверки.
	for name, headers := range files {
		def := byName[name]
		paths := keptFilePaths(values[name])
		for _, header := range headers {
			src, errOpen := header.Open()
			if errOpen != nil {
				return apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось прочитать загружаемый файл", errOpen, nil)
			}
			savedPath, errSave := s.fileStorage.Save(src, header.Filename, "profiles")
			src.Close()
			if errSave != nil {
				s.logger.Error("ProfileService: Ошибка при сохранении файла",
					zap.String("field", def.Name), zap.Error(errSave))
				return apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сохранить файл", errSave, nil)
			}
			paths = append(paths, savedPath)
		}
		merged[name] = paths
	}

	categoryKey := strconv.FormatUint(categoryID, 10)
	if err := s.profileRepo.SaveCategoryValues(ctx, userID, categoryKey, merged); err != nil {
		s.logger.Error("ProfileService: Ошибка при сохранении значений категории",
			zap.Uint64("userID", userID), zap.Uint64("categoryID", categoryID), zap.Error(err))
		return err
	}
	return nil
}

// SubmitAll - массовое сохранение значений по всем присланным категориям.
// Каждая категория сохраняется независимо: отказ одной не откатывает остальные.
func (s *ProfileService) SubmitAll(ctx context.Context, userID uint64, role string, payload dto.SubmitAllDTO) (*dto.SaveResultDTO, error) {
	result := &dto.SaveResultDTO{
		Saved:  []string{},
		Failed: map[string][]interface{}{},
	}

	for categoryKey, values := range payload.Categories {
		categoryID, err := strconv.ParseUint(categoryKey, 10, 64)
		if err != nil {
			result.Failed[categoryKey] = []interface{}{"неверный идентификатор категории"}
			continue
		}
		if err := s.SaveCategoryFields(ctx, userID, role, categoryID, values, nil); err != nil {
			result.Failed[categoryKey] = failureDetails(err)
			continue
		}
		result.Saved = append(result.Saved, categoryKey)
	}

	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

func (s *ProfileService) findCategory(ctx context.Context, categoryID uint64) (*entities.FieldCategory, error) {
	categories, err := s.schemaService.GetCategoryEntities(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == categoryID {
			return &categories[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// keptFilePaths вытаскивает из присланного значения строки-пути уже
// сохранённых файлов, которые клиент решил оставить.
func keptFilePaths(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	case []string:
		return v
	case []interface{}:
		paths := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				paths = append(paths, s)
			}
		}
		return paths
	default:
		return []string{}
	}
}

func failureDetails(err error) []interface{} {
	var httpErr *apperrors.HttpError
	if e, ok := err.(*apperrors.HttpError); ok {
		httpErr = e
	}
	if httpErr != nil && httpErr.Details != nil {
		if fieldErrors, ok := httpErr.Details.([]*validation.FieldError); ok {
			details := make([]interface{}, 0, len(fieldErrors))
			for _, fe := range fieldErrors {
				details = append(details, fe)
			}
			return details
		}
		return []interface{}{httpErr.Details}
	}
	return []interface{}{err.Error()}
}
