package emailsend

import (
	"bytes"
	"fmt"

	"github.com/emersion/go-message/mail"
)

// buildMIME renders msg as a single-part HTML message. Bcc is never written
// to the headers.
func buildMIME(msg *Message) ([]byte, error) {
	var h mail.Header
	h.SetDate(msg.Date)
	h.SetAddressList("From", []*mail.Address{{Name: msg.FromName, Address: msg.From}})
	h.SetAddressList("To", toAddresses(msg.To))
	if len(msg.CC) > 0 {
		h.SetAddressList("Cc", toAddresses(msg.CC))
	}
	h.SetSubject(msg.Subject)
	h.SetMessageID(msg.MessageID)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message writer: %w", err)
	}
	if _, err := w.Write([]byte(msg.HTML)); err != nil {
		return nil, fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message writer: %w", err)
	}
	return buf.Bytes(), nil
}

func toAddresses(addrs []string) []*mail.Address {
	out := make([]*mail.Address, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, &mail.Address{Address: a})
	}
	return out
}
