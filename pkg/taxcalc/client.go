package taxcalc

import "github.com/shopspring/decimal"

// FieldStrategy используется в ошибке при передаче пустой стратегии.
const FieldStrategy = "strategy"

// Client представляет фасад над активной стратегией. Позволяет заменить стратегию,
// сохранив введённые значения.
//
// Сеттеры возвращают *Client для цепочки вызовов. Первая ошибка валидации
// запоминается и доступна через Err; до ResetErr последующие сеттеры
// ничего не делают. Невалидные значения в стратегию не попадают.
type Client struct {
	strategy *Strategy
	err      error
}

// NewClient создаёт фасад. Без стратегии используется вариант "цена с налогом" с ценой 0.
func NewClient(strategy *Strategy) *Client {
	if strategy == nil {
		strategy = NewIncTax(decimal.Zero)
	}
	return &Client{strategy: strategy}
}

// Err возвращает первую ошибку, возникшую в сеттерах.
func (c *Client) Err() error { return c.err }

// ResetErr сбрасывает запомненную ошибку.
func (c *Client) ResetErr() *Client {
	c.err = nil
	return c
}

// Strategy возвращает активную стратегию.
func (c *Client) Strategy() *Strategy { return c.strategy }

// StrategyKind возвращает вариант активной стратегии.
func (c *Client) StrategyKind() Kind { return c.strategy.Kind() }

// StrategyName возвращает имя активной стратегии.
func (c *Client) StrategyName() string { return c.strategy.Name() }

// ChangeStrategy активирует новую стратегию. При carryOver в неё переносятся
// цена, ставка налога, количество, точность и скидка из текущей стратегии.
func (c *Client) ChangeStrategy(next *Strategy, carryOver bool) *Client {
	if c.err != nil {
		return c
	}
	if next == nil {
		c.err = fieldError(FieldStrategy, ErrInvalidType)
		return c
	}
	if carryOver {
		prev := c.strategy
		next.state = state{
			price:           prev.Price(),
			taxRate:         prev.TaxRate(),
			percentDiscount: prev.PercentDiscount(false),
			quantity:        prev.Quantity(),
			decimals:        prev.Decimals(),
		}
	}
	c.strategy = next
	return c
}

// SetStrategy заменяет стратегию без переноса значений.
func (c *Client) SetStrategy(next *Strategy) *Client {
	return c.ChangeStrategy(next, false)
}

// SetPrice задаёт цену.
func (c *Client) SetPrice(price decimal.Decimal) *Client {
	if c.err == nil {
		c.err = c.strategy.SetPrice(price)
	}
	return c
}

// SetTaxRate задаёт ставку налога; пустое значение снимает её.
func (c *Client) SetTaxRate(rate decimal.NullDecimal) *Client {
	if c.err == nil {
		c.err = c.strategy.SetTaxRate(rate)
	}
	return c
}

// SetPercentDiscount задаёт скидку; пустое значение снимает её.
func (c *Client) SetPercentDiscount(discount decimal.NullDecimal) *Client {
	if c.err == nil {
		c.err = c.strategy.SetPercentDiscount(discount)
	}
	return c
}

// SetQuantity задаёт количество.
func (c *Client) SetQuantity(quantity decimal.Decimal) *Client {
	if c.err == nil {
		c.err = c.strategy.SetQuantity(quantity)
	}
	return c
}

// SetDecimals задаёт точность округления.
func (c *Client) SetDecimals(decimals int32) *Client {
	if c.err == nil {
		c.err = c.strategy.SetDecimals(decimals)
	}
	return c
}

// Price возвращает цену, округлённую до текущей точности.
func (c *Client) Price() decimal.Decimal { return c.strategy.Price() }

// TaxRate возвращает ставку налога.
func (c *Client) TaxRate() decimal.NullDecimal { return c.strategy.TaxRate() }

// PercentDiscount возвращает скидку долей либо в процентах.
func (c *Client) PercentDiscount(inPercents bool) decimal.NullDecimal {
	return c.strategy.PercentDiscount(inPercents)
}

// Decimals возвращает точность округления.
func (c *Client) Decimals() int32 { return c.strategy.Decimals() }

// TaxIncluded сообщает, включает ли цена налог.
func (c *Client) TaxIncluded() bool { return c.strategy.TaxIncluded() }

// Quantity возвращает количество.
func (c *Client) Quantity() decimal.Decimal { return c.strategy.Quantity() }

// taxed возвращает пустое значение, если ставка налога не задана.
func (c *Client) taxed(compute func() decimal.Decimal) decimal.NullDecimal {
	if !c.strategy.TaxRate().Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(compute())
}

// discounted возвращает пустое значение, если скидка не задана.
func (c *Client) discounted(compute func() decimal.Decimal) decimal.NullDecimal {
	if !c.strategy.PercentDiscount(false).Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(compute())
}

// BasePrice возвращает цену до скидки без налога.
func (c *Client) BasePrice() decimal.Decimal { return c.strategy.BasePrice() }

// BasePriceTax возвращает налог с цены до скидки.
func (c *Client) BasePriceTax() decimal.Decimal { return c.strategy.BasePriceTax() }

// BasePriceIncTax возвращает цену до скидки с налогом.
func (c *Client) BasePriceIncTax() decimal.Decimal { return c.strategy.BasePriceIncTax() }

// UnitAmount возвращает цену единицы после скидки без налога.
func (c *Client) UnitAmount() decimal.Decimal { return c.strategy.UnitAmount() }

// UnitAmountDiscount пуст, если скидка не задана.
func (c *Client) UnitAmountDiscount() decimal.NullDecimal {
	return c.discounted(c.strategy.UnitAmountDiscount)
}

func (c *Client) UnitAmountWithoutDiscount() decimal.Decimal {
	return c.strategy.UnitAmountWithoutDiscount()
}

// UnitAmountTax пуст, если ставка налога не задана.
func (c *Client) UnitAmountTax() decimal.NullDecimal {
	return c.taxed(c.strategy.UnitAmountTax)
}

func (c *Client) UnitAmountTaxDiscount() decimal.NullDecimal {
	return c.discounted(c.strategy.UnitAmountTaxDiscount)
}

func (c *Client) UnitAmountTaxWithoutDiscount() decimal.Decimal {
	return c.strategy.UnitAmountTaxWithoutDiscount()
}

// UnitAmountIncTax возвращает цену единицы после скидки с налогом.
func (c *Client) UnitAmountIncTax() decimal.Decimal { return c.strategy.UnitAmountIncTax() }

func (c *Client) UnitAmountIncTaxDiscount() decimal.NullDecimal {
	return c.discounted(c.strategy.UnitAmountIncTaxDiscount)
}

func (c *Client) UnitAmountIncTaxWithoutDiscount() decimal.Decimal {
	return c.strategy.UnitAmountIncTaxWithoutDiscount()
}

// Amount возвращает итог после скидки без налога.
func (c *Client) Amount() decimal.Decimal { return c.strategy.Amount() }

// AmountDiscount пуст, если скидка не задана.
func (c *Client) AmountDiscount() decimal.NullDecimal {
	return c.discounted(c.strategy.AmountDiscount)
}

func (c *Client) AmountWithoutDiscount() decimal.Decimal {
	return c.strategy.AmountWithoutDiscount()
}

// AmountTax пуст, если ставка налога не задана.
func (c *Client) AmountTax() decimal.NullDecimal {
	return c.taxed(c.strategy.AmountTax)
}

func (c *Client) AmountTaxDiscount() decimal.NullDecimal {
	return c.discounted(c.strategy.AmountTaxDiscount)
}

func (c *Client) AmountTaxWithoutDiscount() decimal.Decimal {
	return c.strategy.AmountTaxWithoutDiscount()
}

// AmountIncTax возвращает итог с налогом.
func (c *Client) AmountIncTax() decimal.Decimal { return c.strategy.AmountIncTax() }

func (c *Client) AmountIncTaxDiscount() decimal.NullDecimal {
	return c.discounted(c.strategy.AmountIncTaxDiscount)
}

func (c *Client) AmountIncTaxWithoutDiscount() decimal.Decimal {
	return c.strategy.AmountIncTaxWithoutDiscount()
}
