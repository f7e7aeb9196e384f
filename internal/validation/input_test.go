package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub.example.ru",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@nodot",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("password123"))
}

func TestValidateItemFields(t *testing.T) {
	images := []string{"items/photo.jpg"}

	assert.NoError(t, ValidateItemFields("Куртка зимняя", "Тёплая куртка на зиму", "куртки", "M", "хорошее", images))

	// Без фотографий вещь не принимается.
	assert.Error(t, ValidateItemFields("Куртка зимняя", "Тёплая куртка на зиму", "куртки", "M", "хорошее", nil))

	// Слишком короткое описание.
	assert.Error(t, ValidateItemFields("Куртка", "коротко", "куртки", "M", "хорошее", images))

	// Лимит на количество фотографий.
	many := make([]string, MaxImageRefs+1)
	for i := range many {
		many[i] = "items/photo.jpg"
	}
	assert.Error(t, ValidateItemFields("Куртка зимняя", "Тёплая куртка на зиму", "куртки", "M", "хорошее", many))
}

func TestValidateReason(t *testing.T) {
	assert.NoError(t, ValidateReason("", false))
	assert.Error(t, ValidateReason("", true))
	assert.NoError(t, ValidateReason("не соответствует правилам", true))
	assert.Error(t, ValidateReason(strings.Repeat("п", MaxReasonLength+1), true))
}
