package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name        string
		input       string
		countryCode string
		want        string
	}{
		{"us national format", "(212) 555-0123", "US", "+12125550123"},
		{"already e164", "+12125550123", "", "+12125550123"},
		{"default region when country missing", "212-555-0123", "", "+12125550123"},
		{"uk national format", "020 7946 0958", "GB", "+442079460958"},
		{"lowercase region accepted", "020 7946 0958", "gb", "+442079460958"},
		{"empty input", "", "US", ""},
		{"whitespace input", "   ", "US", ""},
		{"garbage input", "not a number", "US", ""},
		{"invalid number", "+1234", "US", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeE164(tc.input, tc.countryCode))
		})
	}
}
