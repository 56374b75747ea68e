package phone

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number without a calling code is parsed.
const DefaultRegion = "US"

// Validation is the libphonenumber view of a phone string.
type Validation struct {
	Valid       bool   `json:"valid"`
	E164        string `json:"e164,omitempty"`
	Region      string `json:"region,omitempty"`
	CallingCode string `json:"callingCode,omitempty"`
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, defaultRegion string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Inspect parses phone and reports whether libphonenumber considers it a
// valid number. Numbers without a leading "+" are read in DefaultRegion.
func Inspect(phone string) Validation {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return Validation{}
	}

	number, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil {
		return Validation{}
	}

	v := Validation{
		CallingCode: "+" + strconv.Itoa(int(number.GetCountryCode())),
		Region:      phonenumbers.GetRegionCodeForNumber(number),
	}
	if phonenumbers.IsValidNumber(number) {
		v.Valid = true
		v.E164 = phonenumbers.Format(number, phonenumbers.E164)
	}
	return v
}

// RegionForCallingCode returns the main ISO 3166-1 region for a calling code
// such as "+44", or "" when the code is unknown.
func RegionForCallingCode(code string) string {
	n, err := strconv.Atoi(strings.TrimPrefix(code, "+"))
	if err != nil || n <= 0 {
		return ""
	}
	region := phonenumbers.GetRegionCodeForCountryCode(n)
	if region == phonenumbers.UNKNOWN_REGION {
		return ""
	}
	return region
}
