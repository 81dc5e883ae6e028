package types

import (
	"fmt"
	"regexp"
	"strings"

	tmmath "github.com/tendermint/ats/libs/math"
)

var coinRegexp = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/:._-]*)$`)

// Coin is an amount of a single denomination.
type Coin struct {
	Denom  string         `json:"denom"`
	Amount tmmath.Uint128 `json:"amount"`
}

// NewCoin returns a Coin of amount denom.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: tmmath.NewUint128(amount)}
}

// String renders the coin as <amount><denom>.
func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

// ParseCoin parses a coin of the form <amount><denom>.
func ParseCoin(s string) (Coin, error) {
	m := coinRegexp.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Coin{}, fmt.Errorf("invalid coin expression: %q", s)
	}
	amount, err := tmmath.ParseUint128(m[1])
	if err != nil {
		return Coin{}, fmt.Errorf("invalid coin amount %q: %w", s, err)
	}
	return Coin{Denom: m[2], Amount: amount}, nil
}

// ParseCoins parses a comma separated list of coins. An empty string
// returns no coins.
func ParseCoins(s string) ([]Coin, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	coins := make([]Coin, 0, len(parts))
	for _, p := range parts {
		c, err := ParseCoin(p)
		if err != nil {
			return nil, err
		}
		coins = append(coins, c)
	}
	return coins, nil
}

// FundsEqual reports whether funds is exactly the single coin want. Zero
// amount coins in funds are ignored, and a zero want matches no funds.
func FundsEqual(funds []Coin, want Coin) bool {
	nonZero := make([]Coin, 0, len(funds))
	for _, c := range funds {
		if !c.Amount.IsZero() {
			nonZero = append(nonZero, c)
		}
	}
	if want.Amount.IsZero() {
		return len(nonZero) == 0
	}
	return len(nonZero) == 1 && nonZero[0].Denom == want.Denom && nonZero[0].Amount.Equal(want.Amount)
}

// HasFunds reports whether any non-zero coin was sent.
func HasFunds(funds []Coin) bool {
	for _, c := range funds {
		if !c.Amount.IsZero() {
			return true
		}
	}
	return false
}
