package constants

//============== РОЛИ ==============

// Коды ролей из claims токена. Используются в бизнес-логике для надежности.
const (
	RoleEmployee = "EMPLOYEE"
	RoleHR       = "HR"
)

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Ключ для закешированной схемы анкеты (все категории с полями).
	CacheKeySchemaCategories = "schema:categories"
)
