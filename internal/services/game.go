package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/store"
)

var (
	// ErrInsufficientBalance is returned when a bet exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUnknownGameType is returned for game type tags outside the fixed set.
	ErrUnknownGameType = errors.New("unknown game type")
	// ErrInvalidDiceTarget is returned for targets outside (0, 100).
	ErrInvalidDiceTarget = errors.New("dice target must be strictly between 0 and 100")
	// ErrInvalidHand is returned when a client-supplied hand holds an unknown rank.
	ErrInvalidHand = errors.New("invalid card rank in hand")
	// ErrInvalidCoinChoice is returned for calls other than heads or tails.
	ErrInvalidCoinChoice = errors.New("choice must be heads or tails")
)

// Notifier receives settled plays for live delivery to connected clients.
type Notifier interface {
	PlaySettled(userID int, rec *models.GameHistory, balance decimal.Decimal)
}

// GameService runs each play through the same sequence: check funds, debit
// the bet, resolve the outcome, persist the new balance, append a history
// record. The balance write and the history append are two separate store
// calls with no rollback between them.
type GameService struct {
	ledger   store.LedgerStore
	gen      *Generator
	notifier Notifier
	log      *logrus.Logger
}

func NewGameService(ledger store.LedgerStore, gen *Generator, notifier Notifier, log *logrus.Logger) *GameService {
	return &GameService{
		ledger:   ledger,
		gen:      gen,
		notifier: notifier,
		log:      log,
	}
}

// PlayOutcome reports a settled play back to the caller.
type PlayOutcome struct {
	GameType  models.GameType
	Balance   decimal.Decimal
	BetAmount decimal.Decimal
	WinAmount decimal.Decimal
	Message   string
	Result    any
	Record    *models.GameHistory
}

// begin loads the balance and checks funds. Nothing is mutated on failure.
func (s *GameService) begin(ctx context.Context, userID int, bet decimal.Decimal) (decimal.Decimal, error) {
	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("get balance: %w", err)
	}
	if balance.Amount.LessThan(bet) {
		return decimal.Decimal{}, ErrInsufficientBalance
	}
	return balance.Amount, nil
}

// settle debits the bet, credits the payout, persists the final balance and
// appends the history record.
func (s *GameService) settle(ctx context.Context, userID int, game models.GameType, current, bet, win decimal.Decimal, result any, message string) (*PlayOutcome, error) {
	final := current.Sub(bet).Add(win)
	if _, err := s.ledger.SetBalance(ctx, userID, final); err != nil {
		return nil, fmt.Errorf("persist balance: %w", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	rec, err := s.ledger.AppendHistory(ctx, &models.GameHistory{
		UserID:    userID,
		GameType:  game,
		BetAmount: bet,
		WinAmount: win,
		Result:    payload,
	})
	if err != nil {
		// Balance already persisted; the play is settled but unrecorded.
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"game":    game,
		}).Error("failed to append history after balance write")
		return nil, fmt.Errorf("append history: %w", err)
	}

	if s.notifier != nil {
		s.notifier.PlaySettled(userID, rec, final)
	}

	return &PlayOutcome{
		GameType:  game,
		Balance:   final,
		BetAmount: bet,
		WinAmount: win,
		Message:   message,
		Result:    result,
		Record:    rec,
	}, nil
}

func (s *GameService) PlaySlots(ctx context.Context, userID int, bet decimal.Decimal) (*PlayOutcome, error) {
	current, err := s.begin(ctx, userID, bet)
	if err != nil {
		return nil, err
	}

	reels := s.gen.SpinSlots()
	win := SlotsPayout(reels, bet)

	var message string
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		message = fmt.Sprintf("Jackpot! You won $%s!", win.StringFixed(2))
	case win.IsPositive():
		message = fmt.Sprintf("You won $%s!", win.StringFixed(2))
	default:
		message = "No match. Try again!"
	}

	return s.settle(ctx, userID, models.GameSlots, current, bet, win, models.SlotsResult{Reels: reels}, message)
}

func (s *GameService) PlayDice(ctx context.Context, userID int, bet decimal.Decimal, target float64, over bool) (*PlayOutcome, error) {
	if target <= 0 || target >= 100 {
		return nil, ErrInvalidDiceTarget
	}

	current, err := s.begin(ctx, userID, bet)
	if err != nil {
		return nil, err
	}

	multiplier := DiceMultiplier(target, over)
	roll := s.gen.RollDice()

	win := decimal.Zero
	var message string
	if DiceWin(roll, target, over) {
		win = DicePayout(bet, multiplier)
		message = fmt.Sprintf("Rolled %.2f. You won $%s at %.2fx!", roll, win.StringFixed(2), multiplier)
	} else {
		message = fmt.Sprintf("Rolled %.2f. Try again!", roll)
	}

	result := models.DiceResult{Roll: roll, Target: target, Over: over, Multiplier: multiplier}
	return s.settle(ctx, userID, models.GameDice, current, bet, win, result, message)
}

func (s *GameService) PlayRoulette(ctx context.Context, userID int, bet decimal.Decimal) (*PlayOutcome, error) {
	current, err := s.begin(ctx, userID, bet)
	if err != nil {
		return nil, err
	}

	number := s.gen.SpinRoulette()
	color := RouletteColor(number)
	win := RoulettePayout(number, bet)

	var message string
	switch color {
	case "green":
		message = fmt.Sprintf("Green zero! You won $%s!", win.StringFixed(2))
	case "red":
		message = fmt.Sprintf("Red %d! You won $%s!", number, win.StringFixed(2))
	default:
		message = fmt.Sprintf("Black %d. Try again!", number)
	}

	result := models.RouletteResult{Number: number, Color: color}
	return s.settle(ctx, userID, models.GameRoulette, current, bet, win, result, message)
}

func (s *GameService) PlayCoinFlip(ctx context.Context, userID int, bet decimal.Decimal, choice string) (*PlayOutcome, error) {
	if choice != CoinHeads && choice != CoinTails {
		return nil, ErrInvalidCoinChoice
	}

	current, err := s.begin(ctx, userID, bet)
	if err != nil {
		return nil, err
	}

	flip := s.gen.FlipCoin()
	win := CoinFlipPayout(choice, flip, bet)

	var message string
	if win.IsPositive() {
		message = fmt.Sprintf("It's %s! You won $%s!", flip, win.StringFixed(2))
	} else {
		message = fmt.Sprintf("It was %s. Try again!", flip)
	}

	result := models.CoinFlipResult{Choice: choice, Result: flip}
	return s.settle(ctx, userID, models.GameCoinFlip, current, bet, win, result, message)
}

func (s *GameService) PlayWheel(ctx context.Context, userID int, bet decimal.Decimal) (*PlayOutcome, error) {
	current, err := s.begin(ctx, userID, bet)
	if err != nil {
		return nil, err
	}

	segment := s.gen.SpinWheel()
	multiplier := WheelMultiplier(segment)
	win := WheelPayout(segment, bet)

	message := fmt.Sprintf("You got %gx! You won $%s!", multiplier, win.StringFixed(2))
	result := models.WheelResult{Segment: segment, Multiplier: multiplier}
	return s.settle(ctx, userID, models.GameWheel, current, bet, win, result, message)
}

// BlackjackHand is the client-visible table state of an unfinished round.
type BlackjackHand struct {
	PlayerCards []string `json:"playerCards"`
	DealerCards []string `json:"dealerCards"`
	PlayerTotal int      `json:"playerTotal"`
	DealerTotal int      `json:"dealerTotal"`
}

// BlackjackHitOutcome is the hand after drawing one more card.
type BlackjackHitOutcome struct {
	Hand  []string `json:"hand"`
	Total int      `json:"total"`
	Bust  bool     `json:"bust"`
}

func validHand(cards []string) bool {
	for _, c := range cards {
		if !ValidRank(c) {
			return false
		}
	}
	return true
}

// DealBlackjack checks funds and deals the opening hands. Nothing is
// persisted; the round settles on stand.
func (s *GameService) DealBlackjack(ctx context.Context, userID int, bet decimal.Decimal) (*BlackjackHand, error) {
	if _, err := s.begin(ctx, userID, bet); err != nil {
		return nil, err
	}

	dealer, player := s.gen.DealBlackjack()
	return &BlackjackHand{
		PlayerCards: player,
		DealerCards: dealer,
		PlayerTotal: HandTotal(player),
		DealerTotal: HandTotal(dealer),
	}, nil
}

// HitBlackjack draws one card onto a client-supplied hand. The round state
// lives on the client between requests; a forged hand only moves the
// caller's own demo balance.
func (s *GameService) HitBlackjack(hand []string) (*BlackjackHitOutcome, error) {
	if !validHand(hand) {
		return nil, ErrInvalidHand
	}

	next := append(append([]string(nil), hand...), s.gen.DrawCard())
	total := HandTotal(next)
	return &BlackjackHitOutcome{
		Hand:  next,
		Total: total,
		Bust:  total > 21,
	}, nil
}

// StandBlackjack plays the dealer out against the client-supplied hands and
// settles the round in a single balance write.
func (s *GameService) StandBlackjack(ctx context.Context, userID int, bet decimal.Decimal, playerCards, dealerCards []string) (*PlayOutcome, error) {
	if !validHand(playerCards) || !validHand(dealerCards) {
		return nil, ErrInvalidHand
	}

	current, err := s.begin(ctx, userID, bet)
	if err != nil {
		return nil, err
	}

	dealer := s.gen.PlayDealer(dealerCards)
	playerTotal := HandTotal(playerCards)
	dealerTotal := HandTotal(dealer)
	win := BlackjackPayout(playerTotal, dealerTotal, bet)

	var message string
	switch {
	case playerTotal > 21:
		message = fmt.Sprintf("You bust. Dealer: %d, You: %d", dealerTotal, playerTotal)
	case dealerTotal > 21:
		message = fmt.Sprintf("Dealer busts! You won $%s!", win.StringFixed(2))
	case playerTotal > dealerTotal:
		message = fmt.Sprintf("You win! You won $%s!", win.StringFixed(2))
	case playerTotal == dealerTotal:
		message = "Push. Bet returned."
	default:
		message = fmt.Sprintf("You lose. Dealer: %d, You: %d", dealerTotal, playerTotal)
	}

	result := models.BlackjackResult{
		PlayerCards: playerCards,
		DealerCards: dealer,
		PlayerTotal: playerTotal,
		DealerTotal: dealerTotal,
	}
	return s.settle(ctx, userID, models.GameBlackjack, current, bet, win, result, message)
}

// RecordPlay appends a play whose outcome was computed by the caller. The
// balance is untouched; only the record's shape is validated. The web client
// settles its own balance through the balance endpoints, which means a
// modified caller can report arbitrary wins for its demo money.
func (s *GameService) RecordPlay(ctx context.Context, userID int, gameType models.GameType, bet, win decimal.Decimal, result string) (*models.GameHistory, error) {
	if !gameType.Valid() {
		return nil, ErrUnknownGameType
	}

	var payload json.RawMessage
	if result != "" {
		if json.Valid([]byte(result)) {
			payload = json.RawMessage(result)
		} else {
			encoded, err := json.Marshal(result)
			if err != nil {
				return nil, fmt.Errorf("encode result: %w", err)
			}
			payload = encoded
		}
	}

	rec, err := s.ledger.AppendHistory(ctx, &models.GameHistory{
		UserID:    userID,
		GameType:  gameType,
		BetAmount: bet,
		WinAmount: win,
		Result:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	if s.notifier != nil {
		if balance, err := s.ledger.Balance(ctx, userID); err == nil {
			s.notifier.PlaySettled(userID, rec, balance.Amount)
		}
	}
	return rec, nil
}

// History returns the user's plays newest first. The limit defaults to 50
// and is capped at 100.
func (s *GameService) History(ctx context.Context, userID, limit int) ([]*models.GameHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	records, err := s.ledger.History(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return records, nil
}
