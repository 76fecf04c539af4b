package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPricingTable_TableEntry(t *testing.T) {
	table := DefaultPricingTable()
	require.Equal(t, 600, table.Price("Dent", SeveritySevere))
	require.Equal(t, 80, table.Price("Scratch", SeverityMinor))
	// Категория сравнивается без учёта регистра.
	require.Equal(t, 600, table.Price("dent", SeveritySevere))
}

func TestPricingTable_Fallback(t *testing.T) {
	table := DefaultPricingTable()
	require.Equal(t, 100, table.Price("Unknown", SeverityMinor))
	require.Equal(t, 300, table.Price("Unknown", SeverityModerate))
	require.Equal(t, 700, table.Price("Unknown", SeveritySevere))
}

func TestPricingTable_Totality(t *testing.T) {
	table := DefaultPricingTable()
	categories := []string{"Scratch", "Dent", "Bumper Missing", "", "glass shatter"}
	severities := []Severity{SeverityUnknown, SeverityMinor, SeverityModerate, SeveritySevere, Severity(-3), Severity(99)}

	for _, c := range categories {
		for _, s := range severities {
			p := table.Price(c, s)
			require.GreaterOrEqual(t, p, 0, "%s/%s", c, s)
			if !s.Known() {
				require.Zero(t, p, "%s/%s", c, s)
			}
		}
	}
}

func TestPricingTable_NegativeClampedToZero(t *testing.T) {
	table := NewPricingTable("EUR", TierPrices{Minor: -5}, []CategoryPrice{
		{Name: "Dent", Prices: TierPrices{Minor: -1, Moderate: 10}},
	})
	require.Zero(t, table.Price("Dent", SeverityMinor))
	require.Zero(t, table.Price("Other", SeverityMinor))
	require.Equal(t, 10, table.Price("Dent", SeverityModerate))
	require.Equal(t, "EUR", table.Currency())
}

func TestPricingTable_DuplicateCategoryKeepsOrder(t *testing.T) {
	table := NewPricingTable("", ReferenceFallback, []CategoryPrice{
		{Name: "Scratch", Prices: TierPrices{Minor: 1}},
		{Name: "Dent", Prices: TierPrices{Minor: 2}},
		{Name: "scratch", Prices: TierPrices{Minor: 3}},
	})

	cats := table.Categories()
	require.Len(t, cats, 2)
	require.Equal(t, "scratch", cats[0].Name)
	require.Equal(t, 3, table.Price("SCRATCH", SeverityMinor))
	require.Equal(t, DefaultCurrency, table.Currency())
}
