package taxcalc

import "fmt"

// Kind определяет вариант стратегии расчёта.
type Kind int

const (
	// KindIncTax: цена уже включает налог.
	KindIncTax Kind = iota
	// KindWithoutTax: цена указана без налога.
	KindWithoutTax
)

func (k Kind) String() string {
	switch k {
	case KindIncTax:
		return "inc-tax"
	case KindWithoutTax:
		return "without-tax"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TaxIncluded возвращает признак "цена включает налог" для варианта.
func (k Kind) TaxIncluded() bool {
	return k == KindIncTax
}

// KindFor выбирает вариант по флагу taxIncluded.
func KindFor(taxIncluded bool) Kind {
	if taxIncluded {
		return KindIncTax
	}
	return KindWithoutTax
}

// ParseKind разбирает имя варианта ("inc-tax" или "without-tax").
func ParseKind(name string) (Kind, error) {
	switch name {
	case "inc-tax":
		return KindIncTax, nil
	case "without-tax":
		return KindWithoutTax, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q: %w", name, ErrInvalidValue)
	}
}
