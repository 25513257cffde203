package emailsend

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// validateRecipients rejects the whole send when any address is invalid.
func validateRecipients(input *Input) error {
	if len(input.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	var invalid []string
	for _, list := range [][]string{input.To, input.CC, input.BCC} {
		for _, addr := range list {
			if !IsValidEmail(addr) {
				invalid = append(invalid, addr)
			}
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid email addresses: %s", strings.Join(invalid, ", "))
	}
	if strings.TrimSpace(input.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if input.HTML == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

func trimAll(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, strings.TrimSpace(a))
	}
	return out
}
