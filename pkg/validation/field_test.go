package validation

import (
	"testing"

	"profile-system/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func textField(required bool, maxLength *int) *entities.FieldDefinition {
	return &entities.FieldDefinition{
		ID:    1,
		Name:  "full_name",
		Label: "ФИО",
		Type:  entities.FieldTypeText,
		Rules: entities.ValidationRules{Required: required, MaxLength: maxLength},
	}
}

func TestValidateField_RequiredText(t *testing.T) {
	def := textField(true, intPtr(5))

	assert.Nil(t, ValidateField(def, "hello"), "валидное значение должно проходить")

	err := ValidateField(def, "hello!")
	require.NotNil(t, err)
	assert.Equal(t, CodeLengthOutOfRange, err.Code)

	err = ValidateField(def, "")
	require.NotNil(t, err)
	assert.Equal(t, CodeRequired, err.Code, "пустая строка на required-поле - это отказ required, а не длины")

	err = ValidateField(def, "   ")
	require.NotNil(t, err)
	assert.Equal(t, CodeRequired, err.Code, "пробельная строка считается отсутствующим значением")
}

func TestValidateField_OptionalMissing(t *testing.T) {
	def := textField(false, intPtr(5))

	assert.Nil(t, ValidateField(def, nil), "отсутствующее значение необязательного поля не проверяется дальше")
	assert.Nil(t, ValidateField(def, ""))
}

func TestValidateField_TextPattern(t *testing.T) {
	def := textField(false, nil)
	def.Rules.Pattern = `[А-Яа-яЁё\s-]+`

	assert.Nil(t, ValidateField(def, "Иванов Иван"))

	err := ValidateField(def, "Ivanov")
	require.NotNil(t, err)
	assert.Equal(t, CodePatternMismatch, err.Code)

	// Шаблон заякорен: частичное совпадение не считается.
	def.Rules.Pattern = `[0-9]{3}`
	err = ValidateField(def, "12345")
	require.NotNil(t, err)
	assert.Equal(t, CodePatternMismatch, err.Code)
}

func TestValidateField_NumberRange(t *testing.T) {
	def := &entities.FieldDefinition{
		ID:   2,
		Name: "experience",
		Type: entities.FieldTypeNumber,
		Rules: entities.ValidationRules{
			Min: floatPtr(0),
			Max: floatPtr(50),
		},
	}

	assert.Nil(t, ValidateField(def, 10))
	assert.Nil(t, ValidateField(def, 10.5))
	assert.Nil(t, ValidateField(def, "25"), "числовая строка принимается")

	err := ValidateField(def, -1)
	require.NotNil(t, err)
	assert.Equal(t, CodeOutOfRange, err.Code)

	err = ValidateField(def, 51)
	require.NotNil(t, err)
	assert.Equal(t, CodeOutOfRange, err.Code)

	err = ValidateField(def, "не число")
	require.NotNil(t, err)
	assert.Equal(t, CodeOutOfRange, err.Code)
}

func TestValidateField_Date(t *testing.T) {
	def := &entities.FieldDefinition{Name: "birth_date", Type: entities.FieldTypeDate}

	assert.Nil(t, ValidateField(def, "1990-05-17"))
	assert.Nil(t, ValidateField(def, "1990-05-17T00:00:00Z"))

	err := ValidateField(def, "17.05.1990")
	require.NotNil(t, err)
	assert.Equal(t, CodeOutOfRange, err.Code)
}

func TestValidateField_SelectMembership(t *testing.T) {
	def := &entities.FieldDefinition{
		Name:    "marital_status",
		Type:    entities.FieldTypeSelect,
		Options: []string{"Холост", "Женат"},
	}

	assert.Nil(t, ValidateField(def, "Холост"))

	err := ValidateField(def, "Вдовец")
	require.NotNil(t, err)
	assert.Equal(t, CodeNotInOptions, err.Code)
}

func TestValidateField_MultiselectDuplicates(t *testing.T) {
	def := &entities.FieldDefinition{
		Name:    "languages",
		Type:    entities.FieldTypeMultiselect,
		Options: []string{"Русский", "Таджикский", "Английский"},
	}

	assert.Nil(t, ValidateField(def, []string{"Русский", "Английский"}))
	assert.Nil(t, ValidateField(def, []interface{}{"Русский"}), "JSON-массив приходит как []interface{}")

	err := ValidateField(def, []string{"Русский", "Русский"})
	require.NotNil(t, err)
	assert.Equal(t, CodeNotInOptions, err.Code, "повторы отклоняются")

	err = ValidateField(def, []string{"Немецкий"})
	require.NotNil(t, err)
	assert.Equal(t, CodeNotInOptions, err.Code)
}

func TestValidateField_EmailPhoneURL(t *testing.T) {
	email := &entities.FieldDefinition{Name: "email", Type: entities.FieldTypeEmail}
	assert.Nil(t, ValidateField(email, "user@example.com"))
	require.NotNil(t, ValidateField(email, "user@"))

	phone := &entities.FieldDefinition{Name: "phone", Type: entities.FieldTypePhone}
	assert.Nil(t, ValidateField(phone, "+992900000000"))
	assert.Nil(t, ValidateField(phone, "900 00 00 00"), "пробелы в номере игнорируются")
	require.NotNil(t, ValidateField(phone, "12-34"))

	link := &entities.FieldDefinition{Name: "site", Type: entities.FieldTypeURL}
	assert.Nil(t, ValidateField(link, "https://example.com/page"))
	require.NotNil(t, ValidateField(link, "ftp://example.com"))
	require.NotNil(t, ValidateField(link, "просто текст"))
}

func fileField() *entities.FieldDefinition {
	return &entities.FieldDefinition{
		ID:            7,
		Name:          "passport_scan",
		Type:          entities.FieldTypeFile,
		AcceptedTypes: []string{"jpg", "png"},
		Rules: entities.ValidationRules{
			Max:      floatPtr(2), // мегабайты
			MaxFiles: intPtr(1),
		},
	}
}

func TestValidateFiles_SizeAndType(t *testing.T) {
	def := fileField()

	ok := ValidateFiles(def, []FileCandidate{
		{FileName: "scan.jpg", SizeBytes: 1 << 20, ContentType: "image/jpeg"},
	}, 0)
	assert.Nil(t, ok, "jpg на 1MB проходит")

	err := ValidateFiles(def, []FileCandidate{
		{FileName: "scan.png", SizeBytes: 3 << 20, ContentType: "image/png"},
	}, 0)
	require.NotNil(t, err)
	assert.Equal(t, CodeFileTooLarge, err.Code)

	err = ValidateFiles(def, []FileCandidate{
		{FileName: "scan.pdf", SizeBytes: 1 << 20, ContentType: "application/pdf"},
	}, 0)
	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidFileType, err.Code)
}

func TestValidateFiles_MaxFilesIncludesExisting(t *testing.T) {
	def := fileField()

	err := ValidateFiles(def, []FileCandidate{
		{FileName: "scan.jpg", SizeBytes: 1 << 20},
	}, 1)
	require.NotNil(t, err)
	assert.Equal(t, CodeTooManyFiles, err.Code, "уже сохранённые файлы входят в лимит")

	err = ValidateFiles(def, []FileCandidate{
		{FileName: "a.jpg", SizeBytes: 1 << 20},
		{FileName: "b.jpg", SizeBytes: 1 << 20},
	}, 0)
	require.NotNil(t, err)
	assert.Equal(t, CodeTooManyFiles, err.Code)
}

func TestValidateFiles_MinSize(t *testing.T) {
	def := fileField()
	def.Rules.Min = floatPtr(0.5)

	err := ValidateFiles(def, []FileCandidate{
		{FileName: "tiny.jpg", SizeBytes: 1024},
	}, 0)
	require.NotNil(t, err)
	assert.Equal(t, CodeFileTooSmall, err.Code)
}

func TestValidateFiles_ImageWildcard(t *testing.T) {
	def := &entities.FieldDefinition{
		Name:          "photo",
		Type:          entities.FieldTypeImage,
		AcceptedTypes: []string{"image/*"},
	}

	assert.Nil(t, ValidateFiles(def, []FileCandidate{
		{FileName: "photo.webp", SizeBytes: 1 << 20, ContentType: "image/webp"},
	}, 0))

	err := ValidateFiles(def, []FileCandidate{
		{FileName: "doc.pdf", SizeBytes: 1 << 20, ContentType: "application/pdf"},
	}, 0)
	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidFileType, err.Code)
}

func TestValidateFiles_EmptyAcceptedMeansAny(t *testing.T) {
	def := &entities.FieldDefinition{Name: "attachment", Type: entities.FieldTypeFile}

	assert.Nil(t, ValidateFiles(def, []FileCandidate{
		{FileName: "anything.xyz", SizeBytes: 10},
	}, 0))
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(""))
	assert.True(t, IsMissing("   "))
	assert.True(t, IsMissing([]string{}))
	assert.True(t, IsMissing([]interface{}{}))

	assert.False(t, IsMissing("x"))
	assert.False(t, IsMissing(0), "ноль - это значение, а не отсутствие")
	assert.False(t, IsMissing(false))
	assert.False(t, IsMissing([]string{"a"}))
}
