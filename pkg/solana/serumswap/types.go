package serumswap

import "fmt"

type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	}
	return fmt.Sprintf("side(%d)", uint8(s))
}

// ParseSide parses the textual form produced by Side.String.
func ParseSide(value string) (Side, error) {
	switch value {
	case "bid", "Bid", "BID":
		return Bid, nil
	case "ask", "Ask", "ASK":
		return Ask, nil
	}
	return Bid, fmt.Errorf("unknown side %q", value)
}

// ExchangeRate is the minimum rate a swap must realize.
//
// When Strict is set, the rate is computed from the net amount in and out of
// the whole trade. Otherwise surplus left over from an intermediate leg is
// marked at the second leg's rate and counted towards the amount received.
type ExchangeRate struct {
	Rate          uint64
	FromDecimals  uint8
	QuoteDecimals uint8
	Strict        bool
}
