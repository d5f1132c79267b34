package engine

import "math/rand/v2"

// DiceRoller produces movement rolls. Implementations must be safe for use
// from multiple goroutines, since one roller is shared across games.
type DiceRoller interface {
	// Roll returns a value in 0..4.
	Roll() int
}

// CoinDice is the standard dice: the sum of four independent fair coin
// flips, giving a Binomial(4, 0.5) distribution over 0..4.
type CoinDice struct{}

// Roll flips four coins and counts the heads. It draws from the package
// global source in math/rand/v2, which is safe for concurrent use.
func (CoinDice) Roll() int {
	value := 0
	for i := 0; i < 4; i++ {
		if rand.Uint64()&1 == 1 {
			value++
		}
	}
	return value
}
