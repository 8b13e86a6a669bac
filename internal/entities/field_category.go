package entities

import "time"

// FieldCategory - именованная группа полей анкеты (например, "Личные данные").
// Имя уникально в рамках тенанта, порядок категорий задаётся SortOrder.
type FieldCategory struct {
	ID          uint64
	Name        string
	Description string
	SortOrder   int
	Fields      []FieldDefinition
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
