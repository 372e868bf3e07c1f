package dto

type StartDialogRequest struct {
	ShopID string `json:"shop_id" binding:"required,uuid"`
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=4000"`
}

type DialogResponse struct {
	ID            string `json:"id"`
	BuyerID       string `json:"buyer_id"`
	ShopID        string `json:"shop_id"`
	LastMessageAt string `json:"last_message_at,omitempty"`
}

type MessageResponse struct {
	ID        string `json:"id"`
	DialogID  string `json:"dialog_id"`
	SenderID  string `json:"sender_id"`
	Body      string `json:"body"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}
