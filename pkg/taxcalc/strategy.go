package taxcalc

import "github.com/shopspring/decimal"

const defaultDecimals int32 = 2

// state хранит входные данные одной стратегии.
type state struct {
	price           decimal.Decimal
	taxRate         decimal.NullDecimal
	percentDiscount decimal.NullDecimal
	quantity        decimal.Decimal
	decimals        int32
}

// Strategy рассчитывает цены для одного варианта: с налогом в цене или без.
// Все производные суммы пересчитываются при каждом вызове.
type Strategy struct {
	kind  Kind
	state state
}

// New создаёт стратегию заданного варианта с начальной ценой.
func New(kind Kind, price decimal.Decimal) *Strategy {
	return &Strategy{
		kind: kind,
		state: state{
			price:    price,
			quantity: one,
			decimals: defaultDecimals,
		},
	}
}

// NewIncTax создаёт стратегию для цены, которая уже включает налог.
func NewIncTax(price decimal.Decimal) *Strategy {
	return New(KindIncTax, price)
}

// NewWithoutTax создаёт стратегию для цены без налога.
func NewWithoutTax(price decimal.Decimal) *Strategy {
	return New(KindWithoutTax, price)
}

// Kind возвращает вариант стратегии.
func (s *Strategy) Kind() Kind { return s.kind }

// Name возвращает имя варианта: inc-tax или without-tax.
func (s *Strategy) Name() string { return s.kind.String() }

// TaxIncluded определяется вариантом и не меняется.
func (s *Strategy) TaxIncluded() bool { return s.kind.TaxIncluded() }

// Сеттеры стратегии возвращают ошибку валидации и не меняют состояние при ошибке.
// Цепочки вызовов строятся через Client.

// SetPrice задаёт цену.
func (s *Strategy) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return fieldError(FieldPrice, err)
	}
	s.state.price = price
	return nil
}

// SetTaxRate задаёт ставку налога; невалидное значение не сохраняется.
// Ставка округляется до 4 знаков.
func (s *Strategy) SetTaxRate(rate decimal.NullDecimal) error {
	if rate.Valid {
		if err := validateRate(rate.Decimal); err != nil {
			return fieldError(FieldTaxRate, err)
		}
		rate.Decimal = rate.Decimal.Round(taxRatePlaces)
	}
	s.state.taxRate = rate
	return nil
}

// SetPercentDiscount задаёт скидку долей от 0 до 1.
func (s *Strategy) SetPercentDiscount(discount decimal.NullDecimal) error {
	if discount.Valid {
		if err := validateRate(discount.Decimal); err != nil {
			return fieldError(FieldPercentDiscount, err)
		}
	}
	s.state.percentDiscount = discount
	return nil
}

// SetQuantity задаёт количество (> 0).
func (s *Strategy) SetQuantity(quantity decimal.Decimal) error {
	if err := validateQuantity(quantity); err != nil {
		return fieldError(FieldQuantity, err)
	}
	s.state.quantity = quantity
	return nil
}

// SetDecimals задаёт точность округления в пределах [MinDecimals, MaxDecimals].
func (s *Strategy) SetDecimals(decimals int32) error {
	if err := validateDecimals(decimals); err != nil {
		return fieldError(FieldDecimals, err)
	}
	s.state.decimals = decimals
	return nil
}

// Price возвращает цену, округлённую до текущей точности.
func (s *Strategy) Price() decimal.Decimal {
	return s.state.price.Round(s.state.decimals)
}

// TaxRate возвращает ставку налога или пустое значение.
func (s *Strategy) TaxRate() decimal.NullDecimal { return s.state.taxRate }

// PercentDiscount возвращает скидку долей либо, при inPercents, в процентах.
func (s *Strategy) PercentDiscount(inPercents bool) decimal.NullDecimal {
	d := s.state.percentDiscount
	if d.Valid && inPercents {
		d.Decimal = d.Decimal.Mul(hundred)
	}
	return d
}

// Quantity возвращает количество.
func (s *Strategy) Quantity() decimal.Decimal { return s.state.quantity }

// Decimals возвращает точность округления.
func (s *Strategy) Decimals() int32 { return s.state.decimals }

func (s *Strategy) inputs() inputs {
	rate := decimal.Zero
	if s.state.taxRate.Valid {
		rate = s.state.taxRate.Decimal
	}
	return inputs{
		price:    s.Price(),
		rate:     rate,
		discount: s.state.percentDiscount,
		places:   s.state.decimals,
	}
}

func (s *Strategy) figures() figures {
	switch s.kind {
	case KindWithoutTax:
		return withoutTaxFigures(s.inputs())
	default:
		return incTaxFigures(s.inputs())
	}
}

func (s *Strategy) total(unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(s.state.quantity).Round(s.state.decimals)
}

// BasePrice возвращает цену до скидки без налога.
func (s *Strategy) BasePrice() decimal.Decimal { return s.figures().basePrice }

// BasePriceTax возвращает налог с цены до скидки.
func (s *Strategy) BasePriceTax() decimal.Decimal { return s.figures().basePriceTax }

// BasePriceIncTax возвращает цену до скидки с налогом.
func (s *Strategy) BasePriceIncTax() decimal.Decimal { return s.figures().basePriceIncTax }

// UnitAmount возвращает цену единицы после скидки, без налога.
func (s *Strategy) UnitAmount() decimal.Decimal { return s.figures().unitAmount }

// UnitAmountWithoutDiscount совпадает с BasePrice.
func (s *Strategy) UnitAmountWithoutDiscount() decimal.Decimal { return s.figures().basePrice }

// UnitAmountDiscount возвращает скидку на единицу без налога.
func (s *Strategy) UnitAmountDiscount() decimal.Decimal {
	f := s.figures()
	return f.basePrice.Sub(f.unitAmount)
}

// UnitAmountTax возвращает налог с единицы после скидки.
func (s *Strategy) UnitAmountTax() decimal.Decimal { return s.figures().unitAmountTax }

// UnitAmountTaxWithoutDiscount совпадает с BasePriceTax.
func (s *Strategy) UnitAmountTaxWithoutDiscount() decimal.Decimal { return s.figures().basePriceTax }

// UnitAmountTaxDiscount возвращает уменьшение налога с единицы за счёт скидки.
func (s *Strategy) UnitAmountTaxDiscount() decimal.Decimal {
	f := s.figures()
	return f.basePriceTax.Sub(f.unitAmountTax)
}

// UnitAmountIncTax возвращает цену единицы после скидки с налогом.
func (s *Strategy) UnitAmountIncTax() decimal.Decimal { return s.figures().unitAmountIncTax }

// UnitAmountIncTaxWithoutDiscount совпадает с BasePriceIncTax.
func (s *Strategy) UnitAmountIncTaxWithoutDiscount() decimal.Decimal {
	return s.figures().basePriceIncTax
}

// UnitAmountIncTaxDiscount возвращает скидку на единицу с налогом.
func (s *Strategy) UnitAmountIncTaxDiscount() decimal.Decimal {
	f := s.figures()
	return f.basePriceIncTax.Sub(f.unitAmountIncTax)
}

// Amount возвращает UnitAmount, умноженную на количество.
func (s *Strategy) Amount() decimal.Decimal { return s.total(s.UnitAmount()) }

// AmountWithoutDiscount возвращает итог без скидки и без налога.
func (s *Strategy) AmountWithoutDiscount() decimal.Decimal {
	return s.total(s.UnitAmountWithoutDiscount())
}

// AmountDiscount возвращает скидку на всё количество без налога.
func (s *Strategy) AmountDiscount() decimal.Decimal { return s.total(s.UnitAmountDiscount()) }

// AmountTax возвращает налог на всё количество.
func (s *Strategy) AmountTax() decimal.Decimal { return s.total(s.UnitAmountTax()) }

// AmountTaxWithoutDiscount возвращает налог на всё количество без учёта скидки.
func (s *Strategy) AmountTaxWithoutDiscount() decimal.Decimal {
	return s.total(s.UnitAmountTaxWithoutDiscount())
}

// AmountTaxDiscount возвращает уменьшение налога за счёт скидки.
func (s *Strategy) AmountTaxDiscount() decimal.Decimal { return s.total(s.UnitAmountTaxDiscount()) }

// AmountIncTax возвращает итог с налогом.
func (s *Strategy) AmountIncTax() decimal.Decimal { return s.total(s.UnitAmountIncTax()) }

// AmountIncTaxWithoutDiscount возвращает итог с налогом без скидки.
func (s *Strategy) AmountIncTaxWithoutDiscount() decimal.Decimal {
	return s.total(s.UnitAmountIncTaxWithoutDiscount())
}

// AmountIncTaxDiscount возвращает скидку на всё количество с налогом.
func (s *Strategy) AmountIncTaxDiscount() decimal.Decimal {
	return s.total(s.UnitAmountIncTaxDiscount())
}
