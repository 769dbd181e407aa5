package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestRecommendBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		profit float64
		want   Recommendation
	}{
		{"well above good threshold", 50, GoodDeal},
		{"just above good threshold", 15.01, GoodDeal},
		{"exactly 15 is neutral", 15, Neutral},
		{"between thresholds", 10, Neutral},
		{"just above neutral threshold", 5.01, Neutral},
		{"exactly 5 is a bad deal", 5, BadDeal},
		{"below neutral threshold", 2, BadDeal},
		{"zero profit", 0, BadDeal},
		{"negative profit", -3, BadDeal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.profit))
		})
	}
}

func TestProperty_RecommendationIsTotalAndConsistent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every profit maps to exactly the threshold bucket", prop.ForAll(
		func(profit float64) bool {
			rec := Recommend(profit)
			switch {
			case profit > 15:
				return rec == GoodDeal
			case profit > 5:
				return rec == Neutral
			default:
				return rec == BadDeal
			}
		},
		gen.Float64Range(-1000, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMargin(t *testing.T) {
	assert.Equal(t, 0.25, Margin(10, 40))
	assert.Equal(t, float64(0), Margin(10, 0), "no division by zero")
	assert.Equal(t, float64(0), Margin(10, -5), "negative comparable treated as absent")
}

func TestProperty_MarginNeverDividesByZero(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("margin equals profit over comparable when positive, else zero", prop.ForAll(
		func(profit, comparable float64) bool {
			m := Margin(profit, comparable)
			if comparable <= 0 {
				return m == 0
			}
			return m == profit/comparable
		},
		gen.Float64Range(0, 500),
		gen.Float64Range(-100, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
