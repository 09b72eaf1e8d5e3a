package mail

type WaitlistEmailData struct {
	Name  string
	Brand string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Brand    string

	dialer dialer
}
