package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	sender Sender
	from   string
}

func NewMailer(host string, port int, user, password string) *Mailer {
	return &Mailer{
		sender: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

// NewMailerWithSender lets callers swap the SMTP dialer.
func NewMailerWithSender(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px; background-color: #f5f5f5;">
	<h2 style="color: #333; text-align: center;">You're invited to take attendance</h2>
	<p>Hello,</p>
	<p>You have been invited to join church attendance as <b>{{.Role}}</b>.</p>
	<p style="text-align: center;"><a href="{{.Link}}" style="display: inline-block; padding: 10px 20px; background-color: #28a745; color: #fff; text-decoration: none; border-radius: 5px;">Accept invitation</a></p>
	<p>If the button does not work, send <code>/start {{.Token}}</code> to the bot.</p>
	<p>The invitation expires on {{.Expires}}.</p>
</div>
`))

type Invitation struct {
	To      string
	Role    string
	Link    string
	Token   string
	Expires string
}

func (m *Mailer) SendInvitation(inv Invitation) error {
	var body bytes.Buffer
	if err := invitationTemplate.Execute(&body, inv); err != nil {
		return fmt.Errorf("render invitation: %w", err)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", inv.To)
	message.SetHeader("Subject", "Invitation to church attendance")
	message.SetBody("text/html", body.String())

	return m.sender.DialAndSend(message)
}
