package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalized is the comparison form of a Message
//
// Text, Subject and Body are NFKC folded, lowercased and whitespace collapsed.
// RawBody is kept untouched for heuristics that look at letter case or punctuation.
type Normalized struct {
	Text    string
	Subject string
	Body    string
	Sender  string
	RawBody string
}

// Normalize builds the comparison form of a message. It never fails; empty
// fields normalize to empty strings.
func Normalize(m Message) Normalized {
	subject := foldText(m.Subject)
	body := foldText(m.Body)

	text := subject
	switch {
	case text == "":
		text = body
	case body != "":
		text = subject + " " + body
	}

	return Normalized{
		Text:    text,
		Subject: subject,
		Body:    body,
		Sender:  strings.ToLower(strings.TrimSpace(m.Sender)),
		RawBody: m.Body,
	}
}

// Field returns the normalized value a matcher field refers to
func (n Normalized) Field(f Field) string {
	switch f {
	case FieldSubject:
		return n.Subject
	case FieldBody:
		return n.Body
	case FieldSender:
		return n.Sender
	default:
		return n.Text
	}
}

// foldText lowercases s and collapses every run of whitespace to a single space
func foldText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(s))), " ")
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
