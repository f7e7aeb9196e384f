package dto

// RegisterRequest представляет запрос на регистрацию.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
}

// LoginRequest представляет запрос на вход.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest представляет запрос на обновление пары токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateItemRequest представляет запрос на создание вещи.
type CreateItemRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Size        string   `json:"size" binding:"required"`
	Condition   string   `json:"condition" binding:"required"`
	ImageRefs   []string `json:"image_refs" binding:"required"`
}

// UpdateItemRequest представляет запрос на изменение описательных полей вещи.
type UpdateItemRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Size        string   `json:"size" binding:"required"`
	Condition   string   `json:"condition" binding:"required"`
	ImageRefs   []string `json:"image_refs" binding:"required"`
}

// ReasonRequest представляет тело с необязательной причиной.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// RequiredReasonRequest представляет тело с обязательной причиной.
type RequiredReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateSwapRequest представляет запрос на предложение обмена.
type CreateSwapRequest struct {
	RecipientItemID string `json:"recipientItemId" binding:"required"`
	RecipientUserID string `json:"recipientUserId"`
	InitiatorItemID string `json:"initiatorItemId" binding:"required"`
}

// SendSwapMessageRequest представляет запрос на сообщение в обмене.
type SendSwapMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
