package email

// Provider - контракт отправки email
type Provider interface {
	Send(to []string, subject, body string) error
}

// Config - настройки SMTP
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}
