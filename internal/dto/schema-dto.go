package dto

import (
	"strings"
	"time"

	"profile-system/internal/entities"

	"github.com/aarondl/null/v8"
)

// CreateCategoryDTO: Что клиент присылает для создания категории.
type CreateCategoryDTO struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UpdateCategoryDTO: Частичное обновление категории.
type UpdateCategoryDTO struct {
	Name        null.String `json:"name" validate:"omitempty,min=1,max=100"`
	Description null.String `json:"description" validate:"omitempty,max=500"`
}

// ValidationRulesDTO повторяет entities.ValidationRules на границе API.
type ValidationRulesDTO struct {
	Required  bool     `json:"required"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty" validate:"omitempty,gte=0"`
	MaxLength *int     `json:"max_length,omitempty" validate:"omitempty,gte=0"`
	Pattern   string   `json:"pattern,omitempty" validate:"omitempty,max=500"`
	MaxFiles  *int     `json:"max_files,omitempty" validate:"omitempty,gte=1"`
}

// CreateFieldDTO: Определение нового поля.
// AcceptedTypes приходит строкой "jpg,png" или "image/*", как её шлёт конструктор схемы.
type CreateFieldDTO struct {
	Name               string             `json:"name" validate:"required,field_key,max=100"`
	Label              string             `json:"label" validate:"required,min=1,max=200"`
	Type               string             `json:"type" validate:"required,field_type"`
	Placeholder        string             `json:"placeholder" validate:"omitempty,max=200"`
	Validation         ValidationRulesDTO `json:"validation"`
	Options            []string           `json:"options" validate:"omitempty,dive,max=200"`
	AcceptedTypes      string             `json:"accepted_types" validate:"omitempty,ext_list"`
	IsVisible          *bool              `json:"is_visible"`
	IsEmployeeEditable bool               `json:"is_employee_editable"`
	HrEditable         bool               `json:"hr_editable"`
}

// UpdateFieldDTO: Частичное обновление поля.
type UpdateFieldDTO struct {
	Label              null.String         `json:"label" validate:"omitempty,min=1,max=200"`
	Type               null.String         `json:"type" validate:"omitempty,field_type"`
	Placeholder        null.String         `json:"placeholder" validate:"omitempty,max=200"`
	Validation         *ValidationRulesDTO `json:"validation,omitempty"`
	Options            []string            `json:"options,omitempty" validate:"omitempty,dive,max=200"`
	AcceptedTypes      null.String         `json:"accepted_types" validate:"omitempty,ext_list"`
	IsVisible          null.Bool           `json:"is_visible"`
	IsEmployeeEditable null.Bool           `json:"is_employee_editable"`
	HrEditable         null.Bool           `json:"hr_editable"`
}

// ReorderFieldsDTO: Полный новый порядок полей категории.
type ReorderFieldsDTO struct {
	FieldIDs []uint64 `json:"field_ids" validate:"required,min=1"`
}

// FieldDTO: Что сервер отправляет клиенту в ответ.
type FieldDTO struct {
	ID                 uint64             `json:"id"`
	CategoryID         uint64             `json:"category_id"`
	Name               string             `json:"name"`
	Label              string             `json:"label"`
	Type               string             `json:"type"`
	Placeholder        string             `json:"placeholder,omitempty"`
	Validation         ValidationRulesDTO `json:"validation"`
	Options            []string           `json:"options,omitempty"`
	AcceptedTypes      string             `json:"accepted_types,omitempty"`
	IsVisible          bool               `json:"is_visible"`
	IsEmployeeEditable bool               `json:"is_employee_editable"`
	HrEditable         bool               `json:"hr_editable"`
	SortOrder          int                `json:"sort_order"`
}

type CategoryDTO struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	SortOrder   int        `json:"sort_order"`
	Fields      []FieldDTO `json:"fields"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at,omitempty"`
}

func NewFieldDTO(f *entities.FieldDefinition) FieldDTO {
	return FieldDTO{
		ID:         f.ID,
		CategoryID: f.CategoryID,
		Name:       f.Name,
		Label:      f.Label,
		Type:       string(f.Type),
		Placeholder: f.Placeholder,
		Validation: ValidationRulesDTO{
			Required:  f.Rules.Required,
			Min:       f.Rules.Min,
			Max:       f.Rules.Max,
			MinLength: f.Rules.MinLength,
			MaxLength: f.Rules.MaxLength,
			Pattern:   f.Rules.Pattern,
			MaxFiles:  f.Rules.MaxFiles,
		},
		Options:            f.Options,
		AcceptedTypes:      strings.Join(f.AcceptedTypes, ","),
		IsVisible:          f.IsVisible,
		IsEmployeeEditable: f.IsEmployeeEditable,
		HrEditable:         f.HrEditable,
		SortOrder:          f.SortOrder,
	}
}

func NewCategoryDTO(c *entities.FieldCategory) CategoryDTO {
	fields := make([]FieldDTO, 0, len(c.Fields))
	for i := range c.Fields {
		fields = append(fields, NewFieldDTO(&c.Fields[i]))
	}
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		Fields:      fields,
		CreatedAt:   c.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
