package services

import (
	"context"
	"strings"

	"profile-system/internal/dto"
	"profile-system/internal/entities"
	"profile-system/internal/repositories"
	"profile-system/pkg/constants"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/utils"

	"go.uber.org/zap"
)

type SchemaBuilderServiceInterface interface {
	SaveAll(ctx context.Context, categoryID uint64, payload dto.BuilderSaveAllDTO) (*dto.CategoryDTO, error)
}

// SchemaBuilderService сводит итоговое состояние конструктора с тем, что
// лежит в базе. Новые поля ещё не имеют серверных ID, поэтому сверка идёт
// по названию (Label): совпало - обновляем на месте, не совпало - создаём,
// сохранённое поле без пары - удаляем. Порядок в payload.Fields становится
// порядком полей категории.
type SchemaBuilderService struct {
	schemaService SchemaServiceInterface
	categoryRepo  repositories.CategoryRepositoryInterface
	fieldRepo     repositories.FieldRepositoryInterface
	cacheRepo     repositories.CacheRepositoryInterface
	logger        *zap.Logger
}

func NewSchemaBuilderService(
	schemaService SchemaServiceInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	fieldRepo repositories.FieldRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) SchemaBuilderServiceInterface {
	return &SchemaBuilderService{
		schemaService: schemaService,
		categoryRepo:  categoryRepo,
		fieldRepo:     fieldRepo,
		cacheRepo:     cacheRepo,
		logger:        logger,
	}
}

func (s *SchemaBuilderService) SaveAll(ctx context.Context, categoryID uint64, payload dto.BuilderSaveAllDTO) (*dto.CategoryDTO, error) {
	if _, err := s.categoryRepo.FindCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(payload.Fields))
	for _, f := range payload.Fields {
		label := strings.TrimSpace(f.Label)
		if seen[label] {
			return nil, apperrors.NewInvalidInputError("поле '%s' встречается в списке дважды", label)
		}
		seen[label] = true
	}

	if payload.Name.Valid || payload.Description.Valid {
		var name, description *string
		if payload.Name.Valid {
			name = utils.StringPtr(strings.TrimSpace(payload.Name.String))
		}
		if payload.Description.Valid {
			description = utils.StringPtr(payload.Description.String)
		}
		if err := s.categoryRepo.UpdateCategory(ctx, categoryID, name, description); err != nil {
			return nil, err
		}
	}

	persisted, err := s.fieldRepo.GetByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	byLabel := make(map[string]*entities.FieldDefinition, len(persisted))
	for i := range persisted {
		label := persisted[i].Label
		// Первое совпадение выигрывает, дубликаты остаются кандидатами на удаление.
		if _, ok := byLabel[label]; !ok {
			byLabel[label] = &persisted[i]
		}
	}

	// Сохранение идёт по принципу best-effort: одно проблемное поле не
	// откатывает остальные, итог клиент видит в перечитанной категории.
	claimed := make(map[uint64]bool, len(payload.Fields))
	finalOrder := make([]uint64, 0, len(payload.Fields))
	for _, incoming := range payload.Fields {
		label := strings.TrimSpace(incoming.Label)
		existing, matched := byLabel[label]
		if matched {
			claimed[existing.ID] = true
			desired, errBuild := s.buildDesired(categoryID, incoming, existing)
			if errBuild != nil {
				s.logger.Warn("SchemaBuilderService: Поле пропущено, некорректное определение",
					zap.String("label", label), zap.Error(errBuild))
				finalOrder = append(finalOrder, existing.ID)
				continue
			}
			if errUpd := s.fieldRepo.Update(ctx, existing.ID, desired); errUpd != nil {
				s.logger.Warn("SchemaBuilderService: Не удалось обновить поле",
					zap.Uint64("fieldID", existing.ID), zap.Error(errUpd))
			}
			finalOrder = append(finalOrder, existing.ID)
			continue
		}

		desired, errBuild := s.buildDesired(categoryID, incoming, nil)
		if errBuild != nil {
			s.logger.Warn("SchemaBuilderService: Новое поле пропущено, некорректное определение",
				zap.String("label", label), zap.Error(errBuild))
			continue
		}
		id, errCreate := s.fieldRepo.Create(ctx, desired)
		if errCreate != nil {
			s.logger.Warn("SchemaBuilderService: Не удалось создать поле",
				zap.String("label", label), zap.Error(errCreate))
			continue
		}
		finalOrder = append(finalOrder, id)
	}

	for i := range persisted {
		if claimed[persisted[i].ID] {
			continue
		}
		if errDel := s.fieldRepo.Delete(ctx, persisted[i].ID); errDel != nil {
			s.logger.Warn("SchemaBuilderService: Не удалось удалить поле",
				zap.Uint64("fieldID", persisted[i].ID), zap.Error(errDel))
			finalOrder = append(finalOrder, persisted[i].ID)
		}
	}

	if len(finalOrder) > 0 {
		if errOrder := s.fieldRepo.ReorderFields(ctx, categoryID, finalOrder); errOrder != nil {
			s.logger.Warn("SchemaBuilderService: Не удалось применить порядок полей",
				zap.Uint64("categoryID", categoryID), zap.Error(errOrder))
		}
	}

	if errDel := s.cacheRepo.Del(ctx, constants.CacheKeySchemaCategories); errDel != nil {
		s.logger.Warn("SchemaBuilderService: Не удалось сбросить кеш схемы", zap.Error(errDel))
	}

	return s.schemaService.FindCategory(ctx, categoryID)
}

// buildDesired собирает целевую сущность поля. Если тип изменился по
// сравнению с сохранённым, прежний список опций теряет смысл и берётся
// только то, что пришло из конструктора.
func (s *SchemaBuilderService) buildDesired(categoryID uint64, incoming dto.BuilderFieldDTO, existing *entities.FieldDefinition) (entities.FieldDefinition, error) {
	isVisible := true
	if incoming.IsVisible != nil {
		isVisible = *incoming.IsVisible
	}

	desired := entities.FieldDefinition{
		CategoryID:  categoryID,
		Name:        strings.TrimSpace(incoming.Name),
		Label:       strings.TrimSpace(incoming.Label),
		Type:        entities.FieldType(incoming.Type),
		Placeholder: incoming.Placeholder,
		Rules: entities.ValidationRules{
			Required:  incoming.Validation.Required,
			Min:       incoming.Validation.Min,
			Max:       incoming.Validation.Max,
			MinLength: incoming.Validation.MinLength,
			MaxLength: incoming.Validation.MaxLength,
			Pattern:   incoming.Validation.Pattern,
			MaxFiles:  incoming.Validation.MaxFiles,
		},
		Options:            incoming.Options,
		AcceptedTypes:      []string{incoming.AcceptedTypes},
		IsVisible:          isVisible,
		IsEmployeeEditable: incoming.IsEmployeeEditable,
		HrEditable:         incoming.HrEditable,
	}

	if existing != nil {
		desired.ID = existing.ID
		desired.SortOrder = existing.SortOrder
		if desired.Type == existing.Type && len(incoming.Options) == 0 {
			desired.Options = existing.Options
		}
	}

	return normalizeFieldEntity(desired)
}
