package engine_test

import (
	"testing"

	"github.com/haulhq/driverpay/engine"
)

func TestFormatGBP(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"148", "£148.00"},
		{"18.5", "£18.50"},
		{"212.75", "£212.75"},
		{"1234.5", "£1,234.50"},
		{"0", "£0.00"},
	}

	for _, tc := range cases {
		got := engine.FormatGBP(dec(tc.amount))
		if got != tc.want {
			t.Errorf("FormatGBP(%s) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}
