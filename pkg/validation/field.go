package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"profile-system/internal/entities"
)

// Коды отказов. Возвращаются клиенту как есть, сообщение - человекочитаемое дополнение.
const (
	CodeRequired         = "required"
	CodeOutOfRange       = "out_of_range"
	CodeLengthOutOfRange = "length_out_of_range"
	CodePatternMismatch  = "pattern_mismatch"
	CodeNotInOptions     = "not_in_options"
	CodeInvalidFileType  = "invalid_type"
	CodeFileTooSmall     = "too_small"
	CodeFileTooLarge     = "too_large"
	CodeTooManyFiles     = "too_many_files"
)

// FieldError - типизированный отказ валидации одного поля.
// Это ожидаемый, восстановимый результат, а не фатальная ошибка.
type FieldError struct {
	FieldID uint64 `json:"field_id"`
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("поле '%s': %s (%s)", e.Field, e.Message, e.Code)
}

func reject(def *entities.FieldDefinition, code, message string) *FieldError {
	return &FieldError{FieldID: def.ID, Field: def.Name, Code: code, Message: message}
}

// FileCandidate - файл-кандидат, отвязанный от транспорта.
// Контроллер строит его из multipart.FileHeader, движку про HTTP знать не нужно.
type FileCandidate struct {
	FileName    string
	SizeBytes   int64
	ContentType string
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// IsMissing: значение считается отсутствующим, если это nil, пустая/пробельная строка
// или пустой массив.
func IsMissing(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}

// ValidateField проверяет скалярное значение против определения поля.
// Правила применяются по порядку, первая сработавшая возвращается.
// Для file/image полей используйте ValidateFiles.
func ValidateField(def *entities.FieldDefinition, value interface{}) *FieldError {
	if IsMissing(value) {
		if def.Rules.Required {
			return reject(def, CodeRequired, "обязательное поле не заполнено")
		}
		return nil
	}

	switch def.Type {
	case entities.FieldTypeNumber:
		num, ok := toFloat(value)
		if !ok {
			return reject(def, CodeOutOfRange, "значение не является числом")
		}
		if def.Rules.Min != nil && num < *def.Rules.Min {
			return reject(def, CodeOutOfRange, fmt.Sprintf("значение меньше минимума %v", *def.Rules.Min))
		}
		if def.Rules.Max != nil && num > *def.Rules.Max {
			return reject(def, CodeOutOfRange, fmt.Sprintf("значение больше максимума %v", *def.Rules.Max))
		}

	case entities.FieldTypeText, entities.FieldTypeTextarea:
		str, ok := value.(string)
		if !ok {
			return reject(def, CodePatternMismatch, "значение не является строкой")
		}
		length := len([]rune(str))
		if def.Rules.MinLength != nil && length < *def.Rules.MinLength {
			return reject(def, CodeLengthOutOfRange, fmt.Sprintf("длина меньше минимальной (%d)", *def.Rules.MinLength))
		}
		if def.Rules.MaxLength != nil && length > *def.Rules.MaxLength {
			return reject(def, CodeLengthOutOfRange, fmt.Sprintf("длина больше максимальной (%d)", *def.Rules.MaxLength))
		}
		if def.Rules.Pattern != "" {
			re, err := regexp.Compile("^(?:" + def.Rules.Pattern + ")$")
			if err != nil {
				return reject(def, CodePatternMismatch, "некорректное регулярное выражение в правилах поля")
			}
			if !re.MatchString(str) {
				return reject(def, CodePatternMismatch, "значение не соответствует шаблону")
			}
		}

	case entities.FieldTypeDate:
		str, ok := value.(string)
		if !ok {
			return reject(def, CodeOutOfRange, "дата должна быть строкой")
		}
		if !parseableDate(str) {
			return reject(def, CodeOutOfRange, "не удалось распознать дату")
		}

	case entities.FieldTypeSelect, entities.FieldTypeRadio:
		str, ok := value.(string)
		if !ok || !contains(def.Options, str) {
			return reject(def, CodeNotInOptions, "значение отсутствует в списке опций")
		}

	case entities.FieldTypeMultiselect, entities.FieldTypeCheckbox:
		items, ok := toStringSlice(value)
		if !ok {
			return reject(def, CodeNotInOptions, "ожидается массив строк")
		}
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			if !contains(def.Options, item) {
				return reject(def, CodeNotInOptions, fmt.Sprintf("значение '%s' отсутствует в списке опций", item))
			}
			if seen[item] {
				return reject(def, CodeNotInOptions, fmt.Sprintf("значение '%s' указано повторно", item))
			}
			seen[item] = true
		}

	case entities.FieldTypeEmail:
		str, ok := value.(string)
		if !ok || !emailRegex.MatchString(str) {
			return reject(def, CodePatternMismatch, "некорректный email")
		}

	case entities.FieldTypePhone:
		str, ok := value.(string)
		if !ok || !phoneRegex.MatchString(strings.ReplaceAll(str, " ", "")) {
			return reject(def, CodePatternMismatch, "некорректный номер телефона")
		}

	case entities.FieldTypeURL:
		str, ok := value.(string)
		if !ok {
			return reject(def, CodePatternMismatch, "некорректный URL")
		}
		parsed, err := url.ParseRequestURI(str)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return reject(def, CodePatternMismatch, "некорректный URL")
		}

	case entities.FieldTypeFile, entities.FieldTypeImage:
		// Уже сохранённые значения - это строки-пути, их повторно не проверяем.
		// Новые файлы идут через ValidateFiles.
	}

	return nil
}

// ValidateFiles проверяет новые файлы-кандидаты file/image поля:
// допустимость типа, границы размера (Min/Max в мегабайтах) и количество.
// existingCount - уже сохранённые значения этого поля, учитываются в лимите.
func ValidateFiles(def *entities.FieldDefinition, files []FileCandidate, existingCount int) *FieldError {
	if len(files) == 0 {
		return nil
	}

	maxFiles := 1
	if def.Rules.MaxFiles != nil && *def.Rules.MaxFiles > 0 {
		maxFiles = *def.Rules.MaxFiles
	}
	if len(files)+existingCount > maxFiles {
		return reject(def, CodeTooManyFiles, fmt.Sprintf("файлов больше допустимого (%d)", maxFiles))
	}

	for _, f := range files {
		if !extensionAccepted(def.AcceptedTypes, f) {
			return reject(def, CodeInvalidFileType,
				fmt.Sprintf("недопустимый тип файла '%s'", f.FileName))
		}
		sizeMB := float64(f.SizeBytes) / 1024 / 1024
		if def.Rules.Min != nil && sizeMB < *def.Rules.Min {
			return reject(def, CodeFileTooSmall,
				fmt.Sprintf("размер файла (%.2f MB) меньше минимума %v MB", sizeMB, *def.Rules.Min))
		}
		if def.Rules.Max != nil && sizeMB > *def.Rules.Max {
			return reject(def, CodeFileTooLarge,
				fmt.Sprintf("размер файла (%.2f MB) превышает лимит %v MB", sizeMB, *def.Rules.Max))
		}
	}

	return nil
}

// extensionAccepted: пустой список означает "любой тип".
// Токен "image/*" расширяет приём до любого файла с content-type image/...
func extensionAccepted(accepted []string, f FileCandidate) bool {
	if len(accepted) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.FileName), "."))
	for _, a := range accepted {
		if a == "image/*" {
			if strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
				return true
			}
			continue
		}
		if a == ext {
			return true
		}
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toStringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, raw := range v {
			str, ok := raw.(string)
			if !ok {
				return nil, false
			}
			items = append(items, str)
		}
		return items, true
	default:
		return nil, false
	}
}

func parseableDate(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	return false
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
