package outlook

// Message — JSON-представление письма Outlook.
type Message struct {
	Headers       TransportHeaders `json:"headers"`
	Sender        Person           `json:"sender"`
	To            []Person         `json:"to"`
	Cc            []Person         `json:"cc"`
	Bcc           string           `json:"bcc"`
	Subject       string           `json:"subject"`
	Body          string           `json:"body"`
	RTFCompressed string           `json:"rtf_compressed"`
	Attachments   []Attachment     `json:"attachments"`
}

// TransportHeaders — выборка из заголовков транспорта (PR_TRANSPORT_MESSAGE_HEADERS).
type TransportHeaders struct {
	ContentType string `json:"content_type"`
	Date        string `json:"date"`
	MessageID   string `json:"message_id"`
	ReplyTo     string `json:"reply_to"`
}

type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attachment — вложение; Payload содержит байты вложения в hex.
type Attachment struct {
	DisplayName string `json:"display_name"`
	Payload     string `json:"payload"`
	Extension   string `json:"extension"`
	MimeTag     string `json:"mime_tag"`
	FileName    string `json:"file_name"`
}

// Типы получателей (PR_RECIPIENT_TYPE).
const (
	recipientTo  int32 = 1
	recipientCc  int32 = 2
	recipientBcc int32 = 3
)
