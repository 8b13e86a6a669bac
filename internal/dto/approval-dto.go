package dto

// ReviewDTO: Решение HR по отправленной анкете.
type ReviewDTO struct {
	Action   string `json:"action" validate:"required,oneof=approve reject"`
	Comments string `json:"comments" validate:"omitempty,max=1000"`
}

// UnlockRequestDTO: Запрос владельца на разблокировку анкеты.
type UnlockRequestDTO struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

// ReviewUnlockDTO: Решение HR по запросу на разблокировку.
type ReviewUnlockDTO struct {
	Action   string `json:"action" validate:"required,oneof=approve reject"`
	Comments string `json:"comments" validate:"omitempty,max=1000"`
}

// PendingProfileDTO: Строка в списке ожидающих решения анкет.
type PendingProfileDTO struct {
	ProfileID    uint64 `json:"profile_id"`
	UserID       uint64 `json:"user_id"`
	EmployeeID   string `json:"employee_id,omitempty"`
	SubmittedAt  string `json:"submitted_at,omitempty"`
	UnlockReason string `json:"unlock_reason,omitempty"`
}
