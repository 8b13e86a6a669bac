package dto

import "github.com/aarondl/null/v8"

// BuilderFieldDTO - одна запись рабочего списка конструктора схемы.
// У только что добавленных полей нет серверного ID, клиент шлёт временный
// uuid в ClientID; сверка с сохранёнными полями идёт по Label.
type BuilderFieldDTO struct {
	ClientID           string             `json:"client_id,omitempty"`
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

// BuilderSaveAllDTO: Итоговое состояние конструктора для одной категории.
// Порядок элементов Fields - это и есть итоговый порядок полей.
type BuilderSaveAllDTO struct {
	Name        null.String       `json:"name" validate:"omitempty,min=1,max=100"`
	Description null.String       `json:"description" validate:"omitempty,max=500"`
	Fields      []BuilderFieldDTO `json:"fields" validate:"dive"`
}
