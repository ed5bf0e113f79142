package filter

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"strconv"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/mikey/threat-filter/internal/config"
	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
)

// ParseMessage reads a raw RFC 5322 message into an Email. The envelope sender
// and recipients win over the From and To headers when they are set.
func ParseMessage(raw []byte, sender string, recipients []string) (*core.Email, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	email := &core.Email{
		From:    sender,
		To:      recipients,
		Subject: env.GetHeader("Subject"),
		Body:    env.Text,
		Headers: make(map[string][]string),
	}

	for _, key := range env.GetHeaderKeys() {
		email.Headers[key] = env.GetHeaderValues(key)
	}

	if email.From == "" {
		email.From = headerAddress(env.GetHeader("From"))
	}
	if len(email.To) == 0 {
		if list, err := env.AddressList("To"); err == nil {
			for _, addr := range list {
				email.To = append(email.To, addr.Address)
			}
		}
	}

	return email, nil
}

func headerAddress(value string) string {
	if value == "" {
		return ""
	}
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return addr.Address
}

// annotator rewrites a raw message with verdict headers
type annotator struct {
	headers       config.HeaderNames
	subjectPrefix string
	modifySubject bool
}

// Annotate prepends the verdict headers to raw and tags the subject of spam
// when subject modification is enabled. The body is left byte for byte.
func (a annotator) Annotate(raw []byte, subject string, result *core.ClassificationResult, analysisErr error) []byte {
	head, sep, body := splitMessage(raw)
	eol := lineEnding(head, sep)

	var out bytes.Buffer
	v := result.Verdict
	writeHeader(&out, eol, a.headers.Label, string(v.Label))
	writeHeader(&out, eol, a.headers.Category, v.Category)
	writeHeader(&out, eol, a.headers.Score, strconv.Itoa(v.RiskScore))
	writeHeader(&out, eol, a.headers.Confidence, strconv.FormatFloat(v.Confidence, 'f', 1, 64))
	if len(v.Flags) > 0 {
		writeHeader(&out, eol, a.headers.Flags, strings.Join(v.Flags, "; "))
	}
	if analysisErr != nil {
		writeHeader(&out, eol, "X-Threat-Analysis-Error", analysisErr.Error())
	}

	if v.Label == engine.LabelSpam && a.modifySubject && a.subjectPrefix != "" &&
		!strings.HasPrefix(subject, a.subjectPrefix) {
		head = replaceSubject(head, a.subjectPrefix+subject, eol)
	}

	out.Write(head)
	out.Write(sep)
	out.Write(body)
	return out.Bytes()
}

func writeHeader(buf *bytes.Buffer, eol, name, value string) {
	if name == "" {
		return
	}
	value = strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
	fmt.Fprintf(buf, "%s: %s%s", name, mime.QEncoding.Encode("utf-8", value), eol)
}

// lineEnding reports the message's line terminator, CRLF unless it uses bare LF
func lineEnding(head, sep []byte) string {
	if sep != nil {
		return string(sep)
	}
	if bytes.Contains(head, []byte("\n")) && !bytes.Contains(head, []byte("\r\n")) {
		return "\n"
	}
	return "\r\n"
}

// splitMessage splits raw into the header block, the blank line separator and the body
func splitMessage(raw []byte) (head, sep, body []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+2], []byte("\r\n"), raw[i+4:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i+1], []byte("\n"), raw[i+2:]
	}
	return raw, nil, nil
}

// replaceSubject swaps the Subject field, including folded continuation lines,
// or appends one when the message has none.
func replaceSubject(head []byte, subject, eol string) []byte {
	lines := strings.SplitAfter(string(head), "\n")
	field := "Subject: " + mime.QEncoding.Encode("utf-8", subject) + eol

	var out strings.Builder
	replaced, skipping := false, false
	for _, line := range lines {
		if skipping && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			continue
		}
		skipping = false
		if !replaced && len(line) >= 8 && strings.EqualFold(line[:8], "subject:") {
			out.WriteString(field)
			replaced, skipping = true, true
			continue
		}
		out.WriteString(line)
	}
	if !replaced {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteString(eol)
		}
		out.WriteString(field)
	}
	return []byte(out.String())
}
