// Package whatsapp builds WhatsApp "click to chat" deep links with
// pre-filled messages. Links are generated, never delivered: there is
// no confirmation that the recipient ever received anything.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// linkFormat is the click-to-chat URL template. The format is fixed
	// for compatibility with stored links; do not change it.
	linkFormat = "https://api.whatsapp.com/send?phone=%s&text=%s"

	// countryCode is the Brazilian national prefix expected by the
	// WhatsApp API for local numbers.
	countryCode = "55"

	// messageBanner heads every pre-filled message.
	messageBanner = "*Sistema de Gestão de Estágios*"
)

// NormalizePhone strips all non-digit characters from a raw phone
// number and prepends the national prefix when it is missing.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	phone := digits.String()
	if phone == "" {
		return ""
	}
	if !strings.HasPrefix(phone, countryCode) {
		phone = countryCode + phone
	}
	return phone
}

// BuildLink assembles a click-to-chat link for the given raw phone
// number, alert title, and alert message. Returns an error if the
// phone number contains no digits.
func BuildLink(rawPhone, title, message string) (string, error) {
	phone := NormalizePhone(rawPhone)
	if phone == "" {
		return "", fmt.Errorf("phone number has no digits: %q", rawPhone)
	}

	text := messageBanner + "\n\n" + title + "\n\n" + message
	return fmt.Sprintf(linkFormat, phone, encodeText(text)), nil
}

// encodeText percent-encodes the message text. url.QueryEscape encodes
// spaces as "+", which WhatsApp renders literally; the stored link
// format uses "%20" instead.
func encodeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
