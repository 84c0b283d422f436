package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the region used to interpret local-format numbers
// (leading 0). The deployment is Romanian; a local 07xx number becomes +407xx.
const DefaultRegion = "RO"

var rePhoneNoise = regexp.MustCompile(`[\s\-().]+`)

// NormalizePhone strips whitespace and punctuation and converts the number to
// E.164. Local-format numbers (leading 0) get the Romanian country prefix;
// numbers already carrying a + prefix keep their own country code. Returns ""
// when the input cannot be parsed as a phone number.
func NormalizePhone(phone string) string {
	phone = rePhoneNoise.ReplaceAllString(strings.TrimSpace(phone), "")

	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
