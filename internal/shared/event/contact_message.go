package event

const ContactMessageSubmittedDestination string = "contact_message_submitted"
const ContactMessageSubmittedConsumerNotification string = "contact_message_submitted_notification"

type ContactMessageSubmittedMessage struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
}
