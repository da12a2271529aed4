// Package contact normalizes phone numbers and builds WhatsApp, tel and
// mailto deep links for client contact data.
package contact

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
)

// DefaultCountryCode is prefixed to local numbers.
const DefaultCountryCode = "972"

const (
	minDigits = 10
	maxDigits = 15
)

var israeliMobilePrefixes = []string{"50", "52", "53", "54", "55", "58", "59"}

var (
	ErrEmptyPhone    = errors.New("phone number is empty")
	ErrPhoneTooShort = errors.New("phone number is too short")
	ErrPhoneTooLong  = errors.New("phone number is too long")
	ErrInvalidEmail  = errors.New("invalid email address")
)

// PhoneType classifies a validated number.
type PhoneType string

const (
	PhoneMobile  PhoneType = "mobile"
	PhoneUnknown PhoneType = "unknown"
)

// Validation describes a checked phone number.
type Validation struct {
	Valid   bool      `json:"valid"`
	Type    PhoneType `json:"type,omitempty"`
	Country string    `json:"country,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// WhatsApp is a generated chat link.
type WhatsApp struct {
	URL       string `json:"url"`
	Number    string `json:"number"`
	Formatted string `json:"formatted"`
}

// Handler normalizes numbers for one country.
type Handler struct {
	countryCode string
}

// NewHandler creates a handler. Non-digits in countryCode are ignored and an
// empty code falls back to DefaultCountryCode.
func NewHandler(countryCode string) *Handler {
	code := digitsOnly(countryCode)
	if code == "" {
		code = DefaultCountryCode
	}
	return &Handler{countryCode: code}
}

// CountryCode returns the code prefixed to local numbers.
func (h *Handler) CountryCode() string {
	return h.countryCode
}

// Clean strips everything but digits and converts local numbers to
// international form: a leading 0 is replaced by the country code and a
// bare 9-digit number gets it prefixed.
func (h *Handler) Clean(raw string) string {
	cleaned := digitsOnly(raw)
	switch {
	case cleaned == "":
		return ""
	case strings.HasPrefix(cleaned, "0"):
		return h.countryCode + cleaned[1:]
	case strings.HasPrefix(cleaned, h.countryCode):
		return cleaned
	case len(cleaned) == 9:
		return h.countryCode + cleaned
	}
	return cleaned
}

// Validate checks the length of the cleaned number and recognizes Israeli
// mobile prefixes.
func (h *Handler) Validate(raw string) Validation {
	cleaned, err := h.checked(raw)
	if err != nil {
		return Validation{Valid: false, Error: err.Error()}
	}
	if local, ok := strings.CutPrefix(cleaned, "972"); ok && len(local) >= 2 {
		if slices.Contains(israeliMobilePrefixes, local[:2]) {
			return Validation{Valid: true, Type: PhoneMobile, Country: "Israel"}
		}
	}
	return Validation{Valid: true, Type: PhoneUnknown, Country: "unknown"}
}

// Format renders a number for display, e.g. +972-50-1234567. Input that
// cleans to nothing is returned unchanged.
func (h *Handler) Format(raw string) string {
	cleaned := h.Clean(raw)
	if cleaned == "" {
		return raw
	}
	if local, ok := strings.CutPrefix(cleaned, "972"); ok && len(local) > 2 {
		return fmt.Sprintf("+972-%s-%s", local[:2], local[2:])
	}
	return "+" + cleaned
}

// WhatsAppLink builds a wa.me link with an optional prefilled message.
func (h *Handler) WhatsAppLink(phone, message string) (WhatsApp, error) {
	cleaned, err := h.checkedMin(phone)
	if err != nil {
		return WhatsApp{}, err
	}
	link := "https://wa.me/" + cleaned
	if message != "" {
		link += "?text=" + encodeComponent(message)
	}
	return WhatsApp{URL: link, Number: cleaned, Formatted: h.Format(cleaned)}, nil
}

// TelLink builds a tel: link for the number as entered, minus whitespace.
func (h *Handler) TelLink(phone string) (string, error) {
	trimmed := strings.Join(strings.Fields(phone), "")
	if digitsOnly(trimmed) == "" {
		return "", ErrEmptyPhone
	}
	return "tel:" + trimmed, nil
}

// MailtoLink builds a mailto: link with an optional subject.
func MailtoLink(email, subject string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	link := "mailto:" + addr.Address
	if subject != "" {
		link += "?subject=" + encodeComponent(subject)
	}
	return link, nil
}

func (h *Handler) checked(raw string) (string, error) {
	cleaned, err := h.checkedMin(raw)
	if err != nil {
		return "", err
	}
	if len(cleaned) > maxDigits {
		return "", ErrPhoneTooLong
	}
	return cleaned, nil
}

func (h *Handler) checkedMin(raw string) (string, error) {
	cleaned := h.Clean(raw)
	if cleaned == "" {
		return "", ErrEmptyPhone
	}
	if len(cleaned) < minDigits {
		return "", ErrPhoneTooShort
	}
	return cleaned, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encodeComponent escapes s for a query value with spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var defaultHandler = NewHandler(DefaultCountryCode)

// CleanPhone cleans raw with the default country code.
func CleanPhone(raw string) string { return defaultHandler.Clean(raw) }

// ValidatePhone validates raw with the default country code.
func ValidatePhone(raw string) Validation { return defaultHandler.Validate(raw) }

// FormatPhone formats raw with the default country code.
func FormatPhone(raw string) string { return defaultHandler.Format(raw) }

// WhatsAppLink builds a link with the default country code.
func WhatsAppLink(phone, message string) (WhatsApp, error) {
	return defaultHandler.WhatsAppLink(phone, message)
}

// TelLink builds a tel: link.
func TelLink(phone string) (string, error) { return defaultHandler.TelLink(phone) }
