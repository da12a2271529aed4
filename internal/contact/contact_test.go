package contact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanPhone(t *testing.T) {
	cases := map[string]string{
		"050-123-4567":     "972501234567",
		"+972 50 123 4567": "972501234567",
		"501234567":        "972501234567",
		"(212) 555-0100":   "2125550100",
		"":                 "",
		"abc":              "",
	}
	for in, want := range cases {
		require.Equal(t, want, CleanPhone(in), "input %q", in)
	}
}

func TestHandler_CustomCountryCode(t *testing.T) {
	h := NewHandler("+1")
	require.Equal(t, "1", h.CountryCode())
	require.Equal(t, "12125550100", h.Clean("0212 555 0100"))
	require.Equal(t, DefaultCountryCode, NewHandler("").CountryCode())
}

func TestValidatePhone(t *testing.T) {
	require.Equal(t, Validation{Valid: true, Type: PhoneMobile, Country: "Israel"}, ValidatePhone("052-1234567"))
	require.Equal(t, Validation{Valid: true, Type: PhoneUnknown, Country: "unknown"}, ValidatePhone("03-1234567"))

	v := ValidatePhone("12345")
	require.False(t, v.Valid)
	require.Equal(t, ErrPhoneTooShort.Error(), v.Error)

	v = ValidatePhone("1234567890123456")
	require.False(t, v.Valid)
	require.Equal(t, ErrPhoneTooLong.Error(), v.Error)

	require.False(t, ValidatePhone("").Valid)
}

func TestFormatPhone(t *testing.T) {
	require.Equal(t, "+972-50-1234567", FormatPhone("050-1234567"))
	require.Equal(t, "+2125550100", FormatPhone("2125550100"))
	require.Equal(t, "n/a", FormatPhone("n/a"))
}

func TestWhatsAppLink(t *testing.T) {
	link, err := WhatsAppLink("050-1234567", "")
	require.NoError(t, err)
	require.Equal(t, "https://wa.me/972501234567", link.URL)
	require.Equal(t, "+972-50-1234567", link.Formatted)

	link, err = WhatsAppLink("050-1234567", "hi there & bye")
	require.NoError(t, err)
	require.Equal(t, "https://wa.me/972501234567?text=hi%20there%20%26%20bye", link.URL)

	_, err = WhatsAppLink("123", "")
	require.ErrorIs(t, err, ErrPhoneTooShort)
	_, err = WhatsAppLink("", "")
	require.ErrorIs(t, err, ErrEmptyPhone)
}

func TestTelLink(t *testing.T) {
	link, err := TelLink(" 050 123 4567 ")
	require.NoError(t, err)
	require.Equal(t, "tel:0501234567", link)

	_, err = TelLink("  ")
	require.ErrorIs(t, err, ErrEmptyPhone)
}

func TestMailtoLink(t *testing.T) {
	link, err := MailtoLink(" ops@acme.test ", "")
	require.NoError(t, err)
	require.Equal(t, "mailto:ops@acme.test", link)

	link, err = MailtoLink("ops@acme.test", "Project update")
	require.NoError(t, err)
	require.Equal(t, "mailto:ops@acme.test?subject=Project%20update", link)

	_, err = MailtoLink("not-an-email", "")
	require.ErrorIs(t, err, ErrInvalidEmail)
}
