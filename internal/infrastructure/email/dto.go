package email

type EmailRequest struct {
	To      []string
	Cc      []string
	Subject string
	Body    string
	IsHTML  bool
}
