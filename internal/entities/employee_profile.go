package entities

import "time"

type ApprovalState string

const (
	ApprovalDraft     ApprovalState = "draft"
	ApprovalSubmitted ApprovalState = "submitted"
	ApprovalApproved  ApprovalState = "approved"
	ApprovalRejected  ApprovalState = "rejected"
)

type UnlockState string

const (
	UnlockNone      UnlockState = "none"
	UnlockRequested UnlockState = "requested"
	UnlockApproved  UnlockState = "approved"
	UnlockRejected  UnlockState = "rejected"
)

type ApprovalStatus struct {
	Status         ApprovalState `json:"status"`
	SubmittedAt    *time.Time    `json:"submitted_at,omitempty"`
	ReviewedAt     *time.Time    `json:"reviewed_at,omitempty"`
	ReviewComments string        `json:"review_comments,omitempty"`
}

type UnlockStatus struct {
	Status         UnlockState `json:"status"`
	Reason         string      `json:"reason,omitempty"`
	ReviewedAt     *time.Time  `json:"reviewed_at,omitempty"`
	ReviewComments string      `json:"review_comments,omitempty"`
}

// BaseInfo - базовый блок анкеты, не зависит от динамической схемы.
type BaseInfo struct {
	EmployeeID  string     `json:"employee_id,omitempty"`
	JoiningDate *time.Time `json:"joining_date,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// EmployeeProfile - анкета сотрудника, одна на пользователя.
// CustomFields хранится по ключу ID категории (строкой), а не по имени:
// переименование категории не должно терять сохранённые значения.
type EmployeeProfile struct {
	ID           uint64
	UserID       uint64
	BaseInfo     BaseInfo
	CustomFields map[string]map[string]interface{}
	// LockedFields - поля, значения которых присутствовали в последней отправке на согласование.
	LockedFields []uint64
	Approval     ApprovalStatus
	Unlock       UnlockStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FieldValues возвращает значения одной категории (может быть nil).
func (p *EmployeeProfile) FieldValues(categoryKey string) map[string]interface{} {
	if p.CustomFields == nil {
		return nil
	}
	return p.CustomFields[categoryKey]
}
