package orders

import (
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Amount is a monetary value decoded leniently from the store. Numbers,
// numeric strings and pt-BR strings ("1.234,56") are accepted; anything
// else decodes to zero.
type Amount struct {
	decimal.Decimal
}

// ParseAmount never fails; unparsable input is zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return decimal.Zero
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a *Amount) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		a.Decimal = ParseAmount(v.Value)
	case *types.AttributeValueMemberS:
		a.Decimal = ParseAmount(v.Value)
	default:
		a.Decimal = decimal.Zero
	}
	return nil
}

func (a Amount) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: a.Decimal.String()}, nil
}

// MarshalJSON renders the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Text decodes string and number attributes alike; other types decode to "".
type Text string

func (t *Text) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		*t = Text(v.Value)
	case *types.AttributeValueMemberN:
		*t = Text(v.Value)
	default:
		*t = ""
	}
	return nil
}

// StatusCode is an order status decoded from a number or a numeric string.
// Anything else decodes to 0, which renders as an unknown status.
type StatusCode int

func (c *StatusCode) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = 0
	}
	*c = StatusCode(n)
	return nil
}

func (c StatusCode) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(int(c))}, nil
}
