package dto

import (
	"time"

	"profile-system/internal/entities"
)

// UpsertBaseInfoDTO: Базовый блок анкеты, заполняется HR.
type UpsertBaseInfoDTO struct {
	EmployeeID  string `json:"employee_id" validate:"omitempty,max=50"`
	JoiningDate string `json:"joining_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,max=50"`
}

// SaveCategoryFieldsDTO: JSON-часть multipart-запроса частичного сохранения.
// Values - значения скалярных полей и строки-пути уже сохранённых файлов;
// новые файлы идут отдельными частями формы с именем поля.
type SaveCategoryFieldsDTO struct {
	Values map[string]interface{} `json:"values" validate:"required"`
}

// SubmitAllDTO: Массовое сохранение - значения по всем категориям разом.
// Ключ внешней карты - ID категории (строкой).
type SubmitAllDTO struct {
	Categories map[string]map[string]interface{} `json:"categories" validate:"required"`
}

type ApprovalStatusDTO struct {
	Status         string `json:"status"`
	SubmittedAt    string `json:"submitted_at,omitempty"`
	ReviewedAt     string `json:"reviewed_at,omitempty"`
	ReviewComments string `json:"review_comments,omitempty"`
}

type UnlockStatusDTO struct {
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
	ReviewedAt     string `json:"reviewed_at,omitempty"`
	ReviewComments string `json:"review_comments,omitempty"`
}

type BaseInfoDTO struct {
	EmployeeID  string `json:"employee_id,omitempty"`
	JoiningDate string `json:"joining_date,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ProfileDTO: Анкета как её видит клиент.
type ProfileDTO struct {
	ID           uint64                            `json:"id"`
	UserID       uint64                            `json:"user_id"`
	BaseInfo     BaseInfoDTO                       `json:"base_info"`
	CustomFields map[string]map[string]interface{} `json:"custom_fields"`
	LockedFields []uint64                          `json:"locked_fields"`
	Approval     ApprovalStatusDTO                 `json:"approval_status"`
	Unlock       UnlockStatusDTO                   `json:"unlock_status"`
	CreatedAt    string                            `json:"created_at"`
	UpdatedAt    string                            `json:"updated_at,omitempty"`
}

// FieldWithValueDTO: Поле схемы вместе с текущим значением и правом на запись.
type FieldWithValueDTO struct {
	FieldDTO
	Value    interface{} `json:"value,omitempty"`
	Editable bool        `json:"editable"`
}

// CategoryWithDataDTO: Категория схемы, слитая со значениями анкеты.
// Именно этим ответом живут все рендереры форм.
type CategoryWithDataDTO struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	SortOrder   int                 `json:"sort_order"`
	Fields      []FieldWithValueDTO `json:"fields"`
}

// SaveResultDTO: Результат массового сохранения - по категории либо ок, либо список отказов.
type SaveResultDTO struct {
	Saved  []string                 `json:"saved"`
	Failed map[string][]interface{} `json:"failed,omitempty"`
}

func NewProfileDTO(p *entities.EmployeeProfile) ProfileDTO {
	customFields := p.CustomFields
	if customFields == nil {
		customFields = map[string]map[string]interface{}{}
	}
	lockedFields := p.LockedFields
	if lockedFields == nil {
		lockedFields = []uint64{}
	}
	return ProfileDTO{
		ID:     p.ID,
		UserID: p.UserID,
		BaseInfo: BaseInfoDTO{
			EmployeeID:  p.BaseInfo.EmployeeID,
			JoiningDate: formatDatePtr(p.BaseInfo.JoiningDate),
			Status:      p.BaseInfo.Status,
		},
		CustomFields: customFields,
		LockedFields: lockedFields,
		Approval: ApprovalStatusDTO{
			Status:         string(p.Approval.Status),
			SubmittedAt:    formatTimePtr(p.Approval.SubmittedAt),
			ReviewedAt:     formatTimePtr(p.Approval.ReviewedAt),
			ReviewComments: p.Approval.ReviewComments,
		},
		Unlock: UnlockStatusDTO{
			Status:         string(p.Unlock.Status),
			Reason:         p.Unlock.Reason,
			ReviewedAt:     formatTimePtr(p.Unlock.ReviewedAt),
			ReviewComments: p.Unlock.ReviewComments,
		},
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
