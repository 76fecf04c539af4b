package entity

// Status итог сверки для повреждения на снимке «после».
type Status int

const (
	StatusUnknown     Status = iota // повреждения нет ни в одном из наборов
	StatusPreExisting               // было до аренды
	StatusChargeable                // новое, к оплате
)

var statusLabels = [...]string{
	StatusUnknown:     "unknown",
	StatusPreExisting: "pre-existing",
	StatusChargeable:  "chargeable",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusLabels) {
		return statusLabels[StatusUnknown]
	}
	return statusLabels[s]
}

// PricedDamage повреждение с рассчитанной ценой.
type PricedDamage struct {
	DamageAnnotation
	Price int
}

// Reconciliation результат сверки снимков «до» и «после».
type Reconciliation struct {
	Before      []PricedDamage // все повреждения «до»
	After       []PricedDamage // все повреждения «после» в исходном порядке
	PreExisting []PricedDamage // «после», совпавшие с неиспользованным «до»
	Chargeable  []PricedDamage // «после» без пары

	BeforeTotal      int
	PreExistingTotal int
	ChargeableTotal  int

	status map[string]Status
}

// Reconcile сопоставляет повреждения как мультимножества по ключу
// (категория, тяжесть) без учёта регистра. Сопоставление жадное: «после»
// перебираются по порядку, каждое «до» расходуется не более одного раза.
// Какое именно «до» стало парой, не важно, учитывается только количество.
func Reconcile(before, after []DamageAnnotation, table *PricingTable) Reconciliation {
	r := Reconciliation{
		Before:      make([]PricedDamage, 0, len(before)),
		After:       make([]PricedDamage, 0, len(after)),
		PreExisting: make([]PricedDamage, 0, len(after)),
		Chargeable:  make([]PricedDamage, 0, len(after)),
		status:      make(map[string]Status, len(after)),
	}

	remaining := make(map[MatchKey]int, len(before))
	for _, d := range before {
		p := PricedDamage{DamageAnnotation: d, Price: table.PriceOf(d)}
		r.Before = append(r.Before, p)
		r.BeforeTotal += p.Price
		remaining[d.Key()]++
	}

	for _, d := range after {
		p := PricedDamage{DamageAnnotation: d, Price: table.PriceOf(d)}
		r.After = append(r.After, p)

		key := d.Key()
		if remaining[key] > 0 {
			remaining[key]--
			r.PreExisting = append(r.PreExisting, p)
			r.PreExistingTotal += p.Price
			r.status[d.ID] = StatusPreExisting
			continue
		}
		r.Chargeable = append(r.Chargeable, p)
		r.ChargeableTotal += p.Price
		r.status[d.ID] = StatusChargeable
	}

	return r
}

// StatusOf возвращает статус повреждения «после» по его ID.
func (r Reconciliation) StatusOf(id string) Status {
	if s, ok := r.status[id]; ok {
		return s
	}
	return StatusUnknown
}
