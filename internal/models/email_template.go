package models

// EmailTemplate is a subject/body pair rendered with text/template.
type EmailTemplate struct {
	TemplateID string `bson:"template_id" json:"template_id"` // e.g. "contact_form"
	Locale     string `bson:"locale" json:"locale"`           // e.g. "tr-TR"
	Subject    string `bson:"subject" json:"subject"`
	Body       string `bson:"body" json:"body"` // plain text
}

// EmailJob is one templated mail waiting to be rendered and sent.
type EmailJob struct {
	To         string                 `json:"to"`
	ReplyTo    string                 `json:"reply_to,omitempty"`
	TemplateID string                 `json:"template_id"`
	Locale     string                 `json:"locale,omitempty"`
	Data       map[string]interface{} `json:"data"`
	ContactID  string                 `json:"contact_id,omitempty"` // archived ContactMessage to flag as sent
}
