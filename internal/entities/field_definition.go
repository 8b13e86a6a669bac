package entities

import "time"

type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeFile        FieldType = "file"
	FieldTypeImage       FieldType = "image"
	FieldTypeEmail       FieldType = "email"
	FieldTypePhone       FieldType = "phone"
	FieldTypeURL         FieldType = "url"
)

var knownFieldTypes = map[FieldType]bool{
	FieldTypeText: true, FieldTypeNumber: true, FieldTypeDate: true,
	FieldTypeTextarea: true, FieldTypeSelect: true, FieldTypeMultiselect: true,
	FieldTypeRadio: true, FieldTypeCheckbox: true, FieldTypeFile: true,
	FieldTypeImage: true, FieldTypeEmail: true, FieldTypePhone: true, FieldTypeURL: true,
}

func (t FieldType) IsKnown() bool { return knownFieldTypes[t] }

// IsChoice - типы, для которых обязателен список опций.
func (t FieldType) IsChoice() bool {
	return t == FieldTypeSelect || t == FieldTypeMultiselect || t == FieldTypeRadio || t == FieldTypeCheckbox
}

// IsMulti - типы, значение которых является массивом строк.
func (t FieldType) IsMulti() bool {
	return t == FieldTypeMultiselect || t == FieldTypeCheckbox
}

func (t FieldType) IsFile() bool {
	return t == FieldTypeFile || t == FieldTypeImage
}

// ValidationRules - набор правил одного поля.
// Min/Max для числовых полей - границы значения, для file/image - границы размера в мегабайтах.
type ValidationRules struct {
	Required  bool     `json:"required"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	MaxFiles  *int     `json:"max_files,omitempty"`
}

// FieldDefinition - схема одного поля анкеты, задаётся администратором.
type FieldDefinition struct {
	ID          uint64
	CategoryID  uint64
	Name        string // внутренний ключ (snake_case)
	Label       string // отображаемое название
	Type        FieldType
	Placeholder string
	Rules       ValidationRules
	// Options хранится нормализованным: без пустых строк, без дубликатов, порядок сохранён.
	Options []string
	// AcceptedTypes хранится нормализованным: расширения без точки в нижнем регистре,
	// либо wildcard вида "image/*".
	AcceptedTypes      []string
	IsVisible          bool
	IsEmployeeEditable bool
	// HrEditable - может ли HR редактировать поле ПОСЛЕ блокировки анкеты.
	HrEditable bool
	SortOrder  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
