package entity

// TierPrices цены по трём уровням тяжести.
type TierPrices struct {
	Minor    int
	Moderate int
	Severe   int
}

// For возвращает цену для уровня тяжести. Неизвестный уровень стоит 0.
func (p TierPrices) For(s Severity) int {
	var v int
	switch s {
	case SeverityMinor:
		v = p.Minor
	case SeverityModerate:
		v = p.Moderate
	case SeveritySevere:
		v = p.Severe
	}
	return max(v, 0)
}

// CategoryPrice строка таблицы цен.
type CategoryPrice struct {
	Name   string
	Prices TierPrices
}

// PricingTable статическая таблица цен ремонта по категориям повреждений.
type PricingTable struct {
	currency   string
	categories []CategoryPrice
	index      map[string]int
	fallback   TierPrices
}

// DefaultCurrency используется, если валюта не задана.
const DefaultCurrency = "USD"

// NewPricingTable создаёт таблицу. Порядок категорий сохраняется для отчёта;
// при повторе категории (без учёта регистра) побеждает последняя строка.
func NewPricingTable(currency string, fallback TierPrices, categories []CategoryPrice) *PricingTable {
	if currency == "" {
		currency = DefaultCurrency
	}
	t := &PricingTable{
		currency: currency,
		fallback: fallback,
		index:    make(map[string]int, len(categories)),
	}
	for _, c := range categories {
		key := normalizeLabel(c.Name)
		if i, ok := t.index[key]; ok {
			t.categories[i] = c
			continue
		}
		t.index[key] = len(t.categories)
		t.categories = append(t.categories, c)
	}
	return t
}

// ReferenceFallback цены для категорий, которых нет в таблице.
var ReferenceFallback = TierPrices{Minor: 100, Moderate: 300, Severe: 700}

// DefaultPricingTable возвращает эталонную таблицу цен.
func DefaultPricingTable() *PricingTable {
	return NewPricingTable(DefaultCurrency, ReferenceFallback, []CategoryPrice{
		{Name: "Scratch", Prices: TierPrices{Minor: 80, Moderate: 200, Severe: 400}},
		{Name: "Dent", Prices: TierPrices{Minor: 150, Moderate: 350, Severe: 600}},
		{Name: "Crack", Prices: TierPrices{Minor: 120, Moderate: 300, Severe: 650}},
		{Name: "Glass Shatter", Prices: TierPrices{Minor: 250, Moderate: 500, Severe: 900}},
		{Name: "Lamp Broken", Prices: TierPrices{Minor: 150, Moderate: 300, Severe: 550}},
		{Name: "Tire Flat", Prices: TierPrices{Minor: 60, Moderate: 120, Severe: 250}},
	})
}

// Price возвращает цену повреждения. Функция тотальна: для любой пары
// категория/тяжесть результат определён и неотрицателен.
func (t *PricingTable) Price(category string, severity Severity) int {
	if i, ok := t.index[normalizeLabel(category)]; ok {
		return t.categories[i].Prices.For(severity)
	}
	return t.fallback.For(severity)
}

// PriceOf цена конкретного повреждения.
func (t *PricingTable) PriceOf(d DamageAnnotation) int {
	return t.Price(d.Category, d.Severity)
}

// Categories возвращает копию строк таблицы в исходном порядке.
func (t *PricingTable) Categories() []CategoryPrice {
	out := make([]CategoryPrice, len(t.categories))
	copy(out, t.categories)
	return out
}

// Fallback возвращает цены для категорий вне таблицы.
func (t *PricingTable) Fallback() TierPrices {
	return t.fallback
}

// Currency возвращает код валюты.
func (t *PricingTable) Currency() string {
	return t.currency
}
