// Package email delivers ticket confirmations. Delivery is fire-and-forget
// from the caller's point of view: a failed send is logged, never surfaced.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/config"
)

type TicketMail struct {
	To            string
	Nombre        string
	CodigoBillete string
	CodigoReserva string
}

type Sender interface {
	SendTicket(mail TicketMail) error
}

var ticketTemplate = template.Must(template.New("ticket").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2>¡Tu billete está listo!</h2>
  <p>Hola {{.Nombre}},</p>
  <p>Tu pago fue procesado y tu billete ha sido emitido.</p>
  <ul>
    <li>Código de billete: <strong>{{.CodigoBillete}}</strong></li>
    <li>Código de reserva: <strong>{{.CodigoReserva}}</strong></li>
  </ul>
  <p>Recuerda que el check-in online abre 24 horas antes de la salida.</p>
</body>
</html>`))

// SMTPSender sends over plain SMTP with auth.
type SMTPSender struct {
	cfg config.SMTPConfig
	log *logrus.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, log *logrus.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log}
}

func (s *SMTPSender) SendTicket(mail TicketMail) error {
	var body bytes.Buffer
	if err := ticketTemplate.Execute(&body, mail); err != nil {
		return fmt.Errorf("render ticket email: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", mail.To)
	fmt.Fprintf(&msg, "Subject: Billete %s\r\n", mail.CodigoBillete)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{mail.To}, msg.Bytes()); err != nil {
		return fmt.Errorf("send ticket email: %w", err)
	}

	s.log.WithFields(logrus.Fields{"to": mail.To, "billete": mail.CodigoBillete}).Info("ticket email sent")
	return nil
}

// LogSender is used when no outbound mail identity is configured.
type LogSender struct {
	log *logrus.Logger
}

func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendTicket(mail TicketMail) error {
	s.log.WithFields(logrus.Fields{"to": mail.To, "billete": mail.CodigoBillete}).
		Info("mail not configured, skipping ticket email")
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*LogSender)(nil)
)
