package domain

import "strings"

// Side represents the direction of a trade. Stored and rendered as "buy"/"sell".
type Side string

const (
	SideLong  Side = "buy"
	SideShort Side = "sell"
)

// ParseSide resolves a free-form side string. Only "buy" (any case) is long;
// every other value, including " buy" with padding, is treated as a short.
func ParseSide(raw string) Side {
	if strings.EqualFold(raw, string(SideLong)) {
		return SideLong
	}
	return SideShort
}

// Direction returns +1 for long trades and -1 for short trades. The comparison
// ignores case so a Side built without ParseSide still resolves correctly.
func (s Side) Direction() float64 {
	if strings.EqualFold(string(s), string(SideLong)) {
		return 1.0
	}
	return -1.0
}

// UnmarshalText normalizes the side when decoding JSON or other text formats.
func (s *Side) UnmarshalText(text []byte) error {
	*s = ParseSide(string(text))
	return nil
}

// OptionType is the kind of a European option.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// ParseOptionType resolves an option type string. Empty defaults to a call,
// "call" (any case) is a call and anything else is a put.
func ParseOptionType(raw string) OptionType {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, string(OptionCall)) {
		return OptionCall
	}
	return OptionPut
}

// UntaggedLabel is the bucket for trades that carry no tags.
const UntaggedLabel = "untagged"
