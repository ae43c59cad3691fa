package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"99.00", 9900},
		{"1234.56", 123456},
		{"0.01", 1},
		{"10", 1000},
		{"10.5", 1050},
		{"", 0},
		{"not-a-number", 0},
		{"-5.25", -525},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCents(tt.in), "ParseCents(%q)", tt.in)
	}
}

func TestCentsFromFloat(t *testing.T) {
	assert.Equal(t, Cents(9950), CentsFromFloat(99.5))
	assert.Equal(t, Cents(10), CentsFromFloat(0.1))
	// 19.99 is not exactly representable; rounding must still land on 1999
	assert.Equal(t, Cents(1999), CentsFromFloat(19.99))
	assert.Equal(t, Cents(0), CentsFromFloat(0))
}

func TestCentsString(t *testing.T) {
	assert.Equal(t, "$10.50", Cents(1050).String())
	assert.Equal(t, "$0.00", Cents(0).String())
	assert.Equal(t, "$1234.56", Cents(123456).String())
}

func TestCentsDecimalString(t *testing.T) {
	assert.Equal(t, "99.00", Cents(9900).DecimalString())
	assert.Equal(t, "0.05", Cents(5).DecimalString())
}

func TestEffectivePrice(t *testing.T) {
	p := Product{Price: 5000, DiscountedPrice: 3500}
	assert.Equal(t, Cents(3500), p.EffectivePrice())

	p.DiscountedPrice = 0
	assert.Equal(t, Cents(5000), p.EffectivePrice())
}
