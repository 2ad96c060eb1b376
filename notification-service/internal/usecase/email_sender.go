package usecase

import (
	"log"
)

// DummyEmailSender заглушка для отправки email
type DummyEmailSender struct {
	logger *log.Logger
}

func NewDummyEmailSender() *DummyEmailSender {
	return &DummyEmailSender{
		logger: log.New(log.Writer(), "[Email] ", log.LstdFlags),
	}
}

// SendEmail отправляет email (в нашей заглушке просто логирует)
func (s *DummyEmailSender) SendEmail(to, subject, message string) error {
	s.logger.Printf("Отправка email на %s с темой '%s':\n%s", to, subject, message)
	return nil
}

// SmtpEmailSender отправщик email через SMTP
type SmtpEmailSender struct {
	host     string
	port     string
	user     string
	password string
	from     string
	logger   *log.Logger
}

func NewSmtpEmailSender(host, port, user, password, from string) *SmtpEmailSender {
	return &SmtpEmailSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		logger:   log.New(log.Writer(), "[SMTP] ", log.LstdFlags),
	}
}

func (s *SmtpEmailSender) SendEmail(to, subject, message string) error {
	// Реальная отправка через SMTP не подключена, письмо только логируется
	s.logger.Printf("%s:%s от %s на %s с темой '%s':\n%s", s.host, s.port, s.from, to, subject, message)
	return nil
}
