package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSlotsPayout(t *testing.T) {
	bet := d("10")

	t.Run("triple pays 10x", func(t *testing.T) {
		win := SlotsPayout([3]string{"💎", "💎", "💎"}, bet)
		assert.True(t, win.Equal(d("100")), "got %s", win)
	})

	t.Run("adjacent pair pays 2x", func(t *testing.T) {
		win := SlotsPayout([3]string{"🍒", "🍒", "⭐"}, bet)
		assert.True(t, win.Equal(d("20")), "got %s", win)

		win = SlotsPayout([3]string{"⭐", "🍒", "🍒"}, bet)
		assert.True(t, win.Equal(d("20")), "got %s", win)
	})

	t.Run("split pair pays nothing", func(t *testing.T) {
		win := SlotsPayout([3]string{"🍒", "⭐", "🍒"}, bet)
		assert.True(t, win.IsZero(), "got %s", win)
	})

	t.Run("no match pays nothing", func(t *testing.T) {
		win := SlotsPayout([3]string{"🍒", "🍋", "⭐"}, bet)
		assert.True(t, win.IsZero(), "got %s", win)
	})
}

func TestDiceMultiplier(t *testing.T) {
	t.Run("even odds under", func(t *testing.T) {
		assert.InDelta(t, 1.98, DiceMultiplier(50, false), 1e-9)
	})

	t.Run("even odds over", func(t *testing.T) {
		assert.InDelta(t, 1.98, DiceMultiplier(50, true), 1e-9)
	})

	t.Run("long shot capped at 99x", func(t *testing.T) {
		assert.Equal(t, 99.0, DiceMultiplier(0.5, false))
	})

	t.Run("safe bet pays just above even", func(t *testing.T) {
		assert.InDelta(t, 1.1, DiceMultiplier(90, false), 1e-9)
	})

	t.Run("impossible over bet pays zero", func(t *testing.T) {
		assert.Equal(t, 0.0, DiceMultiplier(100, true))
	})
}

func TestDiceWin(t *testing.T) {
	assert.True(t, DiceWin(49.99, 50, false))
	assert.False(t, DiceWin(50, 50, false), "exact target loses under")
	assert.False(t, DiceWin(50, 50, true), "exact target loses over")
	assert.True(t, DiceWin(50.01, 50, true))
	assert.False(t, DiceWin(75, 50, false))
}

func TestDicePayout(t *testing.T) {
	t.Run("even odds on 50", func(t *testing.T) {
		win := DicePayout(d("50"), DiceMultiplier(50, false))
		assert.True(t, win.Equal(d("99.00")), "got %s", win)
	})

	t.Run("truncates to cents", func(t *testing.T) {
		// 3.33 * 1.98 = 6.5934; payout floors, never rounds up.
		win := DicePayout(d("3.33"), DiceMultiplier(50, false))
		assert.True(t, win.Equal(d("6.59")), "got %s", win)
	})
}

func TestRoulette(t *testing.T) {
	bet := d("10")

	t.Run("zero is green and pays 35x", func(t *testing.T) {
		assert.Equal(t, "green", RouletteColor(0))
		win := RoulettePayout(0, bet)
		assert.True(t, win.Equal(d("350")), "got %s", win)
	})

	t.Run("red pays 2x", func(t *testing.T) {
		assert.Equal(t, "red", RouletteColor(32))
		win := RoulettePayout(32, bet)
		assert.True(t, win.Equal(d("20")), "got %s", win)
	})

	t.Run("black pays nothing", func(t *testing.T) {
		assert.Equal(t, "black", RouletteColor(2))
		win := RoulettePayout(2, bet)
		assert.True(t, win.IsZero(), "got %s", win)
	})

	t.Run("red set has eighteen pockets", func(t *testing.T) {
		assert.Len(t, rouletteReds, 18)
	})
}

func TestHandTotal(t *testing.T) {
	assert.Equal(t, 21, HandTotal([]string{"A", "K"}))
	assert.Equal(t, 12, HandTotal([]string{"A", "A"}))
	assert.Equal(t, 13, HandTotal([]string{"A", "A", "A"}))
	assert.Equal(t, 20, HandTotal([]string{"10", "Q"}))
	assert.Equal(t, 14, HandTotal([]string{"A", "K", "3"}), "ace drops to 1")
	assert.Equal(t, 25, HandTotal([]string{"10", "K", "5"}), "bust stays bust")
}

func TestBlackjackPayout(t *testing.T) {
	bet := d("25")

	t.Run("player bust loses even when dealer busts too", func(t *testing.T) {
		win := BlackjackPayout(22, 23, bet)
		assert.True(t, win.IsZero(), "got %s", win)
	})

	t.Run("dealer bust pays 2x", func(t *testing.T) {
		win := BlackjackPayout(18, 22, bet)
		assert.True(t, win.Equal(d("50")), "got %s", win)
	})

	t.Run("higher total pays 2x", func(t *testing.T) {
		win := BlackjackPayout(20, 18, bet)
		assert.True(t, win.Equal(d("50")), "got %s", win)
	})

	t.Run("push returns the stake", func(t *testing.T) {
		win := BlackjackPayout(19, 19, bet)
		assert.True(t, win.Equal(bet), "got %s", win)
	})

	t.Run("lower total loses", func(t *testing.T) {
		win := BlackjackPayout(17, 20, bet)
		assert.True(t, win.IsZero(), "got %s", win)
	})
}

func TestCoinFlipPayout(t *testing.T) {
	bet := d("5")

	win := CoinFlipPayout(CoinHeads, CoinHeads, bet)
	assert.True(t, win.Equal(d("10")), "got %s", win)

	win = CoinFlipPayout(CoinHeads, CoinTails, bet)
	assert.True(t, win.IsZero(), "got %s", win)
}

func TestWheelPayout(t *testing.T) {
	t.Run("segment multipliers", func(t *testing.T) {
		assert.Equal(t, 10.0, WheelMultiplier(8))
		assert.Equal(t, 1.5, WheelMultiplier(4))
	})

	t.Run("fractional multiplier truncates to cents", func(t *testing.T) {
		win := WheelPayout(4, d("0.33")) // 0.33 * 1.5 = 0.495
		assert.True(t, win.Equal(d("0.49")), "got %s", win)
	})

	t.Run("whole multiplier is exact", func(t *testing.T) {
		win := WheelPayout(8, d("2.50"))
		assert.True(t, win.Equal(d("25.00")), "got %s", win)
	})
}

func TestGeneratorDraws(t *testing.T) {
	gen := NewSeededGenerator(1)

	t.Run("dice rolls stay in range", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			roll := gen.RollDice()
			require.GreaterOrEqual(t, roll, 0.0)
			require.Less(t, roll, 100.0)
		}
	})

	t.Run("roulette pockets stay in range", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			n := gen.SpinRoulette()
			require.GreaterOrEqual(t, n, 0)
			require.LessOrEqual(t, n, 36)
		}
	})

	t.Run("slots draws known symbols", func(t *testing.T) {
		valid := map[string]bool{}
		for _, s := range slotSymbols {
			valid[s] = true
		}
		for i := 0; i < 100; i++ {
			for _, s := range gen.SpinSlots() {
				require.True(t, valid[s], "unknown symbol %q", s)
			}
		}
	})

	t.Run("cards are valid ranks", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			require.True(t, ValidRank(gen.DrawCard()))
		}
	})

	t.Run("dealer draws to seventeen", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			hand := gen.PlayDealer([]string{"2"})
			require.GreaterOrEqual(t, HandTotal(hand), 17)
		}
	})

	t.Run("deal gives one dealer and two player cards", func(t *testing.T) {
		dealer, player := gen.DealBlackjack()
		require.Len(t, dealer, 1)
		require.Len(t, player, 2)
	})

	t.Run("coin lands on both sides eventually", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			seen[gen.FlipCoin()] = true
		}
		assert.True(t, seen[CoinHeads])
		assert.True(t, seen[CoinTails])
	})

	t.Run("wheel segments stay in range", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			seg := gen.SpinWheel()
			require.GreaterOrEqual(t, seg, 0)
			require.Less(t, seg, len(wheelSegments))
		}
	})
}
