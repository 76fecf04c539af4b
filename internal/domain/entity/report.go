package entity

import "time"

// ReportTitle заголовок отчёта.
const ReportTitle = "Vehicle Damage Inspection Report"

var reportDisclaimer = []string{
	"This report is generated automatically from AI damage detection and is indicative only.",
	"Final charges are subject to manual verification by rental staff.",
}

var reportAssumptions = []string{
	"Prices are estimates taken from a static repair cost table.",
	"Damage types missing from the table are priced by severity only.",
	"Unrecognized severity labels are priced at 0.",
	"BEFORE and AFTER photos are assumed to show the same vehicle and view.",
}

var matchingNote = []string{
	"An AFTER damage is pre-existing when an unused BEFORE damage has the same type and severity (case-insensitive).",
	"Each BEFORE damage can match at most one AFTER damage; every other AFTER damage is chargeable.",
	"Comparison rows are aligned by position only and do not claim to show the same physical damage.",
}

// ReportInput исходные данные для сборки отчёта.
type ReportInput struct {
	ID           string
	InspectionID string
	Message      string
	GeneratedAt  time.Time
	Annotations  []DamageAnnotation
	Pricing      *PricingTable
}

// ReportLine повреждение «после» со статусом сверки.
type ReportLine struct {
	PricedDamage
	Status Status
}

// Report итоговая модель отчёта. Собирается один раз и не изменяется;
// один и тот же экземпляр используют и экранное представление, и экспорт.
type Report struct {
	ID           string
	InspectionID string
	GeneratedAt  time.Time
	Currency     string
	Scenario     Scenario
	Message      string

	Pricing  []CategoryPrice
	Fallback TierPrices

	Before []PricedDamage
	After  []ReportLine

	BeforeTotal      int
	PreExistingTotal int
	ChargeableTotal  int // посчитанная сумма новых повреждений
	PayableTotal     int // сумма к оплате с учётом сценария
	PreExistingCount int
	ChargeableCount  int

	Disclaimer   []string
	Assumptions  []string
	MatchingNote []string

	statuses map[string]Status
}

// Synthesize собирает отчёт: делит повреждения по снимкам, сверяет,
// оценивает и классифицирует сценарий.
func Synthesize(in ReportInput) *Report {
	pricing := in.Pricing
	if pricing == nil {
		pricing = DefaultPricingTable()
	}

	before, after := Partition(in.Annotations)
	rec := Reconcile(before, after, pricing)
	scenario := ClassifyScenario(len(before), len(after))

	message := in.Message
	if message == "" {
		message = scenario.Message()
	}

	lines := make([]ReportLine, 0, len(rec.After))
	statuses := make(map[string]Status, len(rec.After))
	for _, d := range rec.After {
		st := rec.StatusOf(d.ID)
		lines = append(lines, ReportLine{PricedDamage: d, Status: st})
		statuses[d.ID] = st
	}

	return &Report{
		ID:               in.ID,
		InspectionID:     in.InspectionID,
		GeneratedAt:      in.GeneratedAt,
		Currency:         pricing.Currency(),
		Scenario:         scenario,
		Message:          message,
		Pricing:          pricing.Categories(),
		Fallback:         pricing.Fallback(),
		Before:           rec.Before,
		After:            lines,
		BeforeTotal:      rec.BeforeTotal,
		PreExistingTotal: rec.PreExistingTotal,
		ChargeableTotal:  rec.ChargeableTotal,
		PayableTotal:     PayableTotal(scenario, rec.ChargeableTotal),
		PreExistingCount: len(rec.PreExisting),
		ChargeableCount:  len(rec.Chargeable),
		Disclaimer:       append([]string(nil), reportDisclaimer...),
		Assumptions:      append([]string(nil), reportAssumptions...),
		MatchingNote:     append([]string(nil), matchingNote...),
		statuses:         statuses,
	}
}

// StatusOf возвращает статус сверки повреждения «после».
func (r *Report) StatusOf(id string) Status {
	if s, ok := r.statuses[id]; ok {
		return s
	}
	return StatusUnknown
}

// HasComparison сообщает, есть ли повреждения хотя бы на одном снимке.
func (r *Report) HasComparison() bool {
	return len(r.Before) > 0 || len(r.After) > 0
}

// ComparisonRows число строк таблицы сравнения.
func (r *Report) ComparisonRows() int {
	return max(len(r.Before), len(r.After))
}

// ComparisonRow возвращает ячейки строки i. Колонки выровнены только по
// позиции: «до» и «после» в одной строке не обязаны быть одним повреждением.
func (r *Report) ComparisonRow(i int) (before *PricedDamage, after *ReportLine) {
	if i >= 0 && i < len(r.Before) {
		before = &r.Before[i]
	}
	if i >= 0 && i < len(r.After) {
		after = &r.After[i]
	}
	return before, after
}

// Annotations возвращает все повреждения отчёта: сначала «до», затем «после».
func (r *Report) Annotations() []DamageAnnotation {
	out := make([]DamageAnnotation, 0, len(r.Before)+len(r.After))
	for _, d := range r.Before {
		out = append(out, d.DamageAnnotation)
	}
	for _, d := range r.After {
		out = append(out, d.DamageAnnotation)
	}
	return out
}
