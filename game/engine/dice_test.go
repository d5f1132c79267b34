package engine

import (
	"math"
	"testing"
)

func TestCoinDiceRange(t *testing.T) {
	dice := CoinDice{}
	for i := 0; i < 1000; i++ {
		roll := dice.Roll()
		if roll < 0 || roll > 4 {
			t.Fatalf("Roll() returned %d, want 0..4", roll)
		}
	}
}

func TestCoinDiceDistribution(t *testing.T) {
	// Binomial(4, 0.5): P(0)=P(4)=1/16, P(1)=P(3)=4/16, P(2)=6/16.
	const samples = 100000
	expected := [5]float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}

	dice := CoinDice{}
	var counts [5]int
	for i := 0; i < samples; i++ {
		counts[dice.Roll()]++
	}

	// With 100k samples the observed frequency sits well within a
	// percentage point of the expectation; 0.015 keeps the test stable.
	const tolerance = 0.015
	for value, count := range counts {
		got := float64(count) / samples
		if math.Abs(got-expected[value]) > tolerance {
			t.Errorf("P(%d) = %.4f, want %.4f ± %.3f", value, got, expected[value], tolerance)
		}
	}
}
