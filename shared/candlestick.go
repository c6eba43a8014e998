package shared

// Sentiment represents the directional bias of a price event.
type Sentiment int

const (
	Neutral Sentiment = iota
	Bullish
	Bearish
)

// String stringifies the provided sentiment.
func (s Sentiment) String() string {
	switch s {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// Candlestick represents a unit candlestick for a market.
//
// Candlestick series handed to consumers are expected to be in ascending
// time order with unique timestamps. Consumers do not sort or validate
// ordering; behaviour on unsorted input is undefined.
type Candlestick struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume float64
	// Time is the candle timestamp in unix milliseconds. It is the unique
	// ordering key for a series.
	Time int64

	// Metadata fields.
	Market    string
	Timeframe Timeframe
}

// FetchSentiment returns the provided candlestick's sentiment.
func (c *Candlestick) FetchSentiment() Sentiment {
	sentiment := c.Close - c.Open
	switch {
	case sentiment < 0:
		return Bearish
	case sentiment > 0:
		return Bullish
	default:
		return Neutral
	}
}
