package entities

import "time"

// ProfileReportItem - строка выгрузки анкет для HR.
type ProfileReportItem struct {
	ProfileID      uint64
	UserID         uint64
	EmployeeID     string
	JoiningDate    *time.Time
	Status         string
	ApprovalStatus string
	SubmittedAt    *time.Time
	ReviewedAt     *time.Time
	UnlockStatus   string
	LockedCount    int
}
