package domain

// Attachment is a file delivered to a chat.
type Attachment struct {
	Path     string
	FileName string
	Caption  string
}
