package models

import (
	"fmt"
	"math"
)

// Money is an amount in cents.
type Money int64

func MoneyFromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

func (m Money) Float64() float64 {
	return float64(m) / 100
}

func (m Money) Times(quantity int) Money {
	return m * Money(quantity)
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
