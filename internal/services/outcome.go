package services

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Slot machine alphabet; a spin draws three symbols independently.
var slotSymbols = [6]string{"🍒", "🍋", "🍊", "🎰", "💎", "⭐"}

// Ordered wheel segments; a spin picks a uniform index.
var wheelSegments = [12]float64{1, 2, 2, 3, 1.5, 5, 1, 2, 10, 1, 1.5, 3}

// Red pockets of the roulette table.
var rouletteReds = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// Blackjack draws from an infinite deck: every card is an independent
// uniform pick over the thirteen ranks.
var blackjackRanks = [13]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

const (
	CoinHeads = "heads"
	CoinTails = "tails"
)

// Generator produces the random draws for every game. Draws are uniform and
// independent per call; there is no reproducibility contract. All resolution
// logic lives in pure functions below so payout rules are testable without
// touching the RNG.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// SpinSlots draws three reel symbols.
func (g *Generator) SpinSlots() [3]string {
	return [3]string{
		slotSymbols[g.intn(len(slotSymbols))],
		slotSymbols[g.intn(len(slotSymbols))],
		slotSymbols[g.intn(len(slotSymbols))],
	}
}

// RollDice draws a value in [0, 100) at two-decimal resolution.
func (g *Generator) RollDice() float64 {
	return float64(g.intn(10000)) / 100
}

// SpinRoulette draws a pocket number in [0, 36].
func (g *Generator) SpinRoulette() int {
	return g.intn(37)
}

// DrawCard draws one blackjack rank.
func (g *Generator) DrawCard() string {
	return blackjackRanks[g.intn(len(blackjackRanks))]
}

// DealBlackjack deals the opening hands: one dealer card, two player cards.
func (g *Generator) DealBlackjack() (dealer, player []string) {
	dealer = []string{g.DrawCard()}
	player = []string{g.DrawCard(), g.DrawCard()}
	return dealer, player
}

// PlayDealer draws cards onto the dealer's hand until its total reaches 17.
func (g *Generator) PlayDealer(hand []string) []string {
	out := append([]string(nil), hand...)
	for HandTotal(out) < 17 {
		out = append(out, g.DrawCard())
	}
	return out
}

// FlipCoin draws heads or tails.
func (g *Generator) FlipCoin() string {
	if g.intn(2) == 0 {
		return CoinHeads
	}
	return CoinTails
}

// SpinWheel draws a segment index.
func (g *Generator) SpinWheel() int {
	return g.intn(len(wheelSegments))
}

// SlotsPayout pays 10x the bet for three of a kind and 2x for a pair on
// adjacent reels.
func SlotsPayout(reels [3]string, bet decimal.Decimal) decimal.Decimal {
	if reels[0] == reels[1] && reels[1] == reels[2] {
		return bet.Mul(decimal.NewFromInt(10))
	}
	if reels[0] == reels[1] || reels[1] == reels[2] {
		return bet.Mul(decimal.NewFromInt(2))
	}
	return decimal.Zero
}

// DiceMultiplier derives the payout multiplier from the win chance, keeping
// a 1% house edge and capping at 99x. Returns 0 for impossible bets.
func DiceMultiplier(target float64, over bool) float64 {
	chance := target / 100
	if over {
		chance = (100 - target) / 100
	}
	if chance <= 0 {
		return 0
	}
	multiplier := 0.99 / chance
	if multiplier > 99 {
		multiplier = 99
	}
	return multiplier
}

// DiceWin reports whether a roll beats the target in the chosen direction.
// Rolling the target exactly loses either way.
func DiceWin(roll, target float64, over bool) bool {
	if over {
		return roll > target
	}
	return roll < target
}

// DicePayout is the bet times the multiplier, truncated to cents.
func DicePayout(bet decimal.Decimal, multiplier float64) decimal.Decimal {
	return truncateCents(bet, multiplier)
}

// RouletteColor classifies a pocket as green, red or black.
func RouletteColor(number int) string {
	switch {
	case number == 0:
		return "green"
	case rouletteReds[number]:
		return "red"
	default:
		return "black"
	}
}

// RoulettePayout pays 35x for the green zero, 2x for red, nothing for black.
func RoulettePayout(number int, bet decimal.Decimal) decimal.Decimal {
	switch RouletteColor(number) {
	case "green":
		return bet.Mul(decimal.NewFromInt(35))
	case "red":
		return bet.Mul(decimal.NewFromInt(2))
	}
	return decimal.Zero
}

// ValidRank reports whether a card rank is one of the thirteen dealt ranks.
func ValidRank(rank string) bool {
	for _, r := range blackjackRanks {
		if r == rank {
			return true
		}
	}
	return false
}

func cardValue(rank string) int {
	switch rank {
	case "J", "Q", "K":
		return 10
	case "A":
		return 11
	}
	n, _ := strconv.Atoi(rank)
	return n
}

// HandTotal sums a blackjack hand, counting aces as 11 and dropping them to
// 1 while the hand would otherwise bust.
func HandTotal(cards []string) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += cardValue(c)
		if c == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// BlackjackPayout resolves a finished round: bust pays nothing, beating the
// dealer (or a dealer bust) pays 2x, a push returns the stake.
func BlackjackPayout(playerTotal, dealerTotal int, bet decimal.Decimal) decimal.Decimal {
	switch {
	case playerTotal > 21:
		return decimal.Zero
	case dealerTotal > 21:
		return bet.Mul(decimal.NewFromInt(2))
	case playerTotal > dealerTotal:
		return bet.Mul(decimal.NewFromInt(2))
	case playerTotal == dealerTotal:
		return bet
	}
	return decimal.Zero
}

// CoinFlipPayout pays 2x when the call matches the flip.
func CoinFlipPayout(choice, result string, bet decimal.Decimal) decimal.Decimal {
	if choice == result {
		return bet.Mul(decimal.NewFromInt(2))
	}
	return decimal.Zero
}

// WheelMultiplier returns the multiplier for a segment index.
func WheelMultiplier(segment int) float64 {
	return wheelSegments[segment]
}

// WheelPayout is the bet times the segment multiplier, truncated to cents.
func WheelPayout(segment int, bet decimal.Decimal) decimal.Decimal {
	return truncateCents(bet, wheelSegments[segment])
}

func truncateCents(bet decimal.Decimal, multiplier float64) decimal.Decimal {
	return bet.Mul(decimal.NewFromFloat(multiplier)).RoundDown(2)
}
