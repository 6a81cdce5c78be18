package models

// OutboundMessageRequest is a text message to a WhatsApp number, sent as a
// command reply or as the weekly digest.
type OutboundMessageRequest struct {
	To         string `json:"to"`
	Message    string `json:"message"`
	PreviewURL bool   `json:"preview_url"`
}
