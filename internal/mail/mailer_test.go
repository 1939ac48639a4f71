package mail

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	messages []*gomail.Message
	err      error
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.messages = append(s.messages, m...)
	return s.err
}

func TestMailer_SendInvitation(t *testing.T) {
	sender := &captureSender{}
	mailer := NewMailerWithSender(sender, "office@church.example")

	err := mailer.SendInvitation(Invitation{
		To:      "new@example.com",
		Role:    "coordinator",
		Link:    "https://church.example/api/invitations/abc/accept",
		Token:   "abc",
		Expires: "2024-02-01 10:00",
	})
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)

	msg := sender.messages[0]
	assert.Equal(t, []string{"office@church.example"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"new@example.com"}, msg.GetHeader("To"))

	var body bytes.Buffer
	_, err = msg.WriteTo(&body)
	require.NoError(t, err)
	// undo quoted-printable soft line breaks
	text := strings.ReplaceAll(body.String(), "=\r\n", "")
	assert.Contains(t, text, "<b>coordinator</b>")
	assert.Contains(t, text, "/start abc")
}

func TestMailer_SendInvitationPropagatesError(t *testing.T) {
	mailer := NewMailerWithSender(&captureSender{err: errors.New("dial failed")}, "office@church.example")

	err := mailer.SendInvitation(Invitation{To: "new@example.com"})
	assert.EqualError(t, err, "dial failed")
}
