package config

// ExtensionPreset - именованный набор расширений, который администратор
// может выбрать при настройке файлового поля вместо ручного ввода.
type ExtensionPreset struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Extensions []string `json:"extensions"`
}

var ExtensionPresets = []ExtensionPreset{
	{
		Name:       "images",
		Label:      "Изображения",
		Extensions: []string{"jpg", "jpeg", "png", "gif", "webp"},
	},
	{
		Name:       "documents",
		Label:      "Документы",
		Extensions: []string{"pdf", "doc", "docx", "xls", "xlsx"},
	},
	{
		Name:       "scans",
		Label:      "Сканы документов",
		Extensions: []string{"pdf", "jpg", "jpeg", "png"},
	},
	{
		Name:       "any_image",
		Label:      "Любое изображение",
		Extensions: []string{"image/*"},
	},
}
