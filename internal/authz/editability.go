package authz

import (
	"profile-system/internal/entities"
	"profile-system/pkg/constants"
)

// IsProfileLocked - единое вычисляемое условие блокировки.
// Анкета заблокирована, если она отправлена/согласована (и разблокировка не одобрена),
// ЛИБО пока висит запрос на разблокировку. Это производное свойство двух статусов,
// отдельным флагом оно не хранится.
func IsProfileLocked(profile *entities.EmployeeProfile) bool {
	if profile == nil {
		return false
	}
	if profile.Unlock.Status == entities.UnlockRequested {
		return true
	}
	approvalLock := profile.Approval.Status == entities.ApprovalSubmitted ||
		profile.Approval.Status == entities.ApprovalApproved
	if approvalLock && profile.Unlock.Status == entities.UnlockApproved {
		// Одобренная разблокировка снимает блокировку согласования
		// до следующей отправки анкеты.
		return false
	}
	return approvalLock
}

// IsFieldEditable решает, может ли актор с данной ролью писать в поле прямо сейчас.
// Набор lockedFields анкеты информационный; запись гейтится именно условием блокировки.
func IsFieldEditable(def *entities.FieldDefinition, profile *entities.EmployeeProfile, role string) bool {
	locked := IsProfileLocked(profile)

	switch role {
	case constants.RoleHR:
		// HR сохраняет право правки на полях с HrEditable даже под блокировкой.
		return !locked || def.HrEditable
	default:
		// Владелец (сотрудник): только явно разрешённые поля и только без блокировки.
		return def.IsEmployeeEditable && !locked
	}
}

// IsFieldVisible: скрытые поля не показываются сотруднику, HR видит всё.
// От состояния блокировки не зависит.
func IsFieldVisible(def *entities.FieldDefinition, role string) bool {
	if role == constants.RoleHR {
		return true
	}
	return def.IsVisible
}
