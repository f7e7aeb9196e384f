package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength       = 3
	MaxUsernameLength       = 30
	MinItemTitleLength      = 3
	MaxItemTitleLength      = 200
	MinItemDescriptionLength = 10
	MaxItemDescriptionLength = 5000
	MaxCategoryLength       = 50
	MaxSizeLength           = 20
	MaxConditionLength      = 50
	MaxImageRefs            = 10
	MaxImageRefLength       = 500
	MaxReasonLength         = 1000
	MinMessageLength        = 1
	MaxMessageLength        = 5000
	MinPasswordLength       = 8
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}
	return nil
}

// ValidateItemFields проверяет описательные поля вещи.
// Вещь без обязательных полей или без единой ссылки на изображение не принимается.
func ValidateItemFields(title, description, category, size, condition string, imageRefs []string) error {
	if err := ValidateLength("название", title, MinItemTitleLength, MaxItemTitleLength); err != nil {
		return err
	}
	if err := ValidateLength("описание", description, MinItemDescriptionLength, MaxItemDescriptionLength); err != nil {
		return err
	}
	if category == "" {
		return fmt.Errorf("категория обязательна")
	}
	if err := ValidateLength("категория", category, 0, MaxCategoryLength); err != nil {
		return err
	}
	if size == "" {
		return fmt.Errorf("размер обязателен")
	}
	if err := ValidateLength("размер", size, 0, MaxSizeLength); err != nil {
		return err
	}
	if condition == "" {
		return fmt.Errorf("состояние обязательно")
	}
	if err := ValidateLength("состояние", condition, 0, MaxConditionLength); err != nil {
		return err
	}

	if len(imageRefs) == 0 {
		return fmt.Errorf("нужна хотя бы одна фотография вещи")
	}
	if len(imageRefs) > MaxImageRefs {
		return fmt.Errorf("нельзя прикрепить более %d фотографий", MaxImageRefs)
	}
	for _, ref := range imageRefs {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("ссылка на изображение не может быть пустой")
		}
		if len(ref) > MaxImageRefLength {
			return fmt.Errorf("ссылка на изображение слишком длинная")
		}
	}

	return nil
}

// ValidateReason проверяет текст причины (отклонение, жалоба, отмена).
func ValidateReason(reason string, required bool) error {
	if reason == "" {
		if required {
			return fmt.Errorf("причина обязательна")
		}
		return nil
	}
	return ValidateLength("причина", reason, 0, MaxReasonLength)
}
