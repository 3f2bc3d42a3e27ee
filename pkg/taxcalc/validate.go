package taxcalc

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Имена полей, которые попадают в FieldError.
const (
	FieldPrice           = "price"
	FieldTaxRate         = "tax_rate"
	FieldTaxIncluded     = "tax_included"
	FieldPercentDiscount = "percent_discount"
	FieldQuantity        = "quantity"
	FieldDecimals        = "decimals"
)

const taxRatePlaces = 4

// Допустимая точность округления.
const (
	MinDecimals int32 = -8
	MaxDecimals int32 = 28
)

// Ограничения на порядок и число значащих цифр входных чисел.
const (
	maxExponent = 64
	maxDigits   = 64
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

var (
	one = decimal.NewFromInt(1)
	// hundred используется для выдачи скидки в процентах.
	hundred = decimal.NewFromInt(100)
)

// toDecimal приводит нетипизированное значение к decimal.
// Возвращает ErrInvalidType для всего, что не является числом,
// и ErrInvalidValue для чисел вне допустимого порядка.
func toDecimal(v any) (decimal.Decimal, error) {
	d, err := rawDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if err := validateMagnitude(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func rawDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, ErrInvalidType
		}
		return *n, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int8:
		return decimal.NewFromInt(int64(n)), nil
	case int16:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case uint:
		return fromUint(uint64(n)), nil
	case uint8:
		return fromUint(uint64(n)), nil
	case uint16:
		return fromUint(uint64(n)), nil
	case uint32:
		return fromUint(uint64(n)), nil
	case uint64:
		return fromUint(n), nil
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return fromString(string(n))
	case string:
		return fromString(n)
	default:
		return decimal.Zero, ErrInvalidType
	}
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrInvalidType
	}
	return decimal.NewFromFloat(f), nil
}

func fromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !numericPattern.MatchString(s) {
		return decimal.Zero, ErrInvalidType
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidType
	}
	return d, nil
}

// validateMagnitude отсекает числа, округление которых требует огромных степеней десяти.
func validateMagnitude(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > maxExponent || exp < -maxExponent || d.NumDigits() > maxDigits {
		return ErrInvalidValue
	}
	return nil
}

// validatePrice проверяет порядок цены.
func validatePrice(p decimal.Decimal) error {
	return validateMagnitude(p)
}

// validateDecimals проверяет точность округления.
func validateDecimals(decimals int32) error {
	if decimals < MinDecimals || decimals > MaxDecimals {
		return ErrInvalidValue
	}
	return nil
}

// validateRate проверяет долю (ставку налога или скидку) на попадание в [0,1].
func validateRate(r decimal.Decimal) error {
	if err := validateMagnitude(r); err != nil {
		return err
	}
	if r.IsNegative() || r.GreaterThan(one) {
		return ErrInvalidPercentValue
	}
	return nil
}

// validateQuantity проверяет, что количество строго положительно.
func validateQuantity(q decimal.Decimal) error {
	if err := validateMagnitude(q); err != nil {
		return err
	}
	if !q.IsPositive() {
		return ErrInvalidValue
	}
	return nil
}

// ParsePrice разбирает цену. Допускается любое конечное число с порядком не больше maxExponent.
func ParsePrice(v any) (decimal.Decimal, error) {
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, fieldError(FieldPrice, err)
	}
	return d, nil
}

// ParseRate разбирает необязательную долю в диапазоне [0,1].
// nil означает отсутствие значения.
func ParseRate(v any) (decimal.NullDecimal, error) {
	return parseRate(FieldTaxRate, v)
}

// ParsePercentDiscount разбирает необязательную скидку в диапазоне [0,1].
func ParsePercentDiscount(v any) (decimal.NullDecimal, error) {
	return parseRate(FieldPercentDiscount, v)
}

func parseRate(field string, v any) (decimal.NullDecimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case decimal.NullDecimal:
		if !n.Valid {
			return n, nil
		}
		v = n.Decimal
	}

	d, err := toDecimal(v)
	if err != nil {
		return decimal.NullDecimal{}, fieldError(field, err)
	}
	if err := validateRate(d); err != nil {
		return decimal.NullDecimal{}, fieldError(field, err)
	}
	return decimal.NewNullDecimal(d), nil
}

// ParseQuantity разбирает количество (> 0).
func ParseQuantity(v any) (decimal.Decimal, error) {
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, fieldError(FieldQuantity, err)
	}
	if err := validateQuantity(d); err != nil {
		return decimal.Zero, fieldError(FieldQuantity, err)
	}
	return d, nil
}

// ParseDecimals разбирает точность округления. Дробные значения не допускаются,
// значения вне [MinDecimals, MaxDecimals] отклоняются с ErrInvalidValue.
func ParseDecimals(v any) (int32, error) {
	d, err := toDecimal(v)
	if err != nil {
		return 0, fieldError(FieldDecimals, err)
	}
	if !d.IsInteger() {
		return 0, fieldError(FieldDecimals, ErrInvalidType)
	}
	if d.LessThan(decimal.NewFromInt32(MinDecimals)) || d.GreaterThan(decimal.NewFromInt32(MaxDecimals)) {
		return 0, fieldError(FieldDecimals, ErrInvalidValue)
	}
	return int32(d.IntPart()), nil
}

// ValidateDecimals проверяет точность округления из конфигурации.
func ValidateDecimals(decimals int32) error {
	if err := validateDecimals(decimals); err != nil {
		return fieldError(FieldDecimals, err)
	}
	return nil
}

// ParseTaxIncluded разбирает флаг "цена включает налог".
func ParseTaxIncluded(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fieldError(FieldTaxIncluded, ErrInvalidType)
	}
	return b, nil
}
