package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	m := Message{
		Sender:  "  Alerts@Bank.Example ",
		Subject: "Security   ALERT",
		Body:    "Please\n\nVERIFY\tyour account",
	}
	n := Normalize(m)

	assert.Equal(t, "security alert please verify your account", n.Text)
	assert.Equal(t, "security alert", n.Subject)
	assert.Equal(t, "please verify your account", n.Body)
	assert.Equal(t, "alerts@bank.example", n.Sender)
	assert.Equal(t, m.Body, n.RawBody)
	assert.Equal(t, "Security   ALERT", m.Subject, "input is untouched")
}

func TestNormalize_EmptyFields(t *testing.T) {
	assert.Equal(t, Normalized{}, Normalize(Message{}))
	assert.Equal(t, "body only", Normalize(Message{Body: "Body Only"}).Text)
	assert.Equal(t, "subject only", Normalize(Message{Subject: "Subject Only"}).Text)
}

func TestNormalize_CompatibilityForms(t *testing.T) {
	// fullwidth letters fold to ASCII
	assert.Equal(t, "prize", Normalize(Message{Body: "ＰＲＩＺＥ"}).Text)
}
