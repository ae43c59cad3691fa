package checkout

import (
	"net/url"
	"strconv"
	"strings"
)

// WhatsAppLink builds a wa.me deep link that opens a chat with phone
// and the message pre-filled. The phone number is reduced to digits
// only; wa.me rejects "+" and separators.
func WhatsAppLink(phone, message string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	// %20 rather than "+" for spaces: WhatsApp renders "+" literally.
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits.String() + "?text=" + encoded
}

func itoa(n int) string { return strconv.Itoa(n) }
