package notify

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// InvitationMessage is the prefilled share text sent with every invitation link.
func InvitationMessage(guestName, eventName, link string) string {
	return fmt.Sprintf("Halo %s! 🎉\n\nAnda diundang ke %s!\n\nBuka undangan Anda di:\n%s", guestName, eventName, link)
}

// NormalizePhone keeps digits only and rewrites a local leading 0 to the
// Indonesian country code 62.
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}

// WhatsAppLink builds a wa.me deep link with the message prefilled.
func WhatsAppLink(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", NormalizePhone(phone), url.QueryEscape(message))
}

// InstagramLink builds an ig.me direct-message link for handle ("@" optional).
func InstagramLink(handle string) string {
	return "https://ig.me/m/" + strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
