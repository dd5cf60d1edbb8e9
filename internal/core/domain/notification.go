package domain

// Notification is one rendered alert message addressed to a channel.
type Notification struct {
	Channel Channel
	To      string
	Subject string
	Text    string
	HTML    string
}
