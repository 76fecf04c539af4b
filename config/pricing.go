package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"rental-inspector/internal/domain/entity"
)

var errNegativePrice = errors.New("negative price")

type tierFile struct {
	Minor    int `yaml:"minor"`
	Moderate int `yaml:"moderate"`
	Severe   int `yaml:"severe"`
}

type categoryFile struct {
	Name     string `yaml:"name"`
	Minor    int    `yaml:"minor"`
	Moderate int    `yaml:"moderate"`
	Severe   int    `yaml:"severe"`
}

type pricingFile struct {
	Currency   string         `yaml:"currency"`
	Fallback   *tierFile      `yaml:"fallback"`
	Categories []categoryFile `yaml:"categories"`
}

// LoadPricing возвращает таблицу цен. Без файла используется справочная
// таблица; currency переопределяет валюту, если в файле она не задана.
func LoadPricing(path, currency string) (*entity.PricingTable, error) {
	if path == "" {
		if currency == "" || currency == entity.DefaultCurrency {
			return entity.DefaultPricingTable(), nil
		}
		def := entity.DefaultPricingTable()
		return entity.NewPricingTable(currency, def.Fallback(), def.Categories()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}
	return ParsePricing(data, currency)
}

// ParsePricing разбирает YAML с таблицей цен. Порядок категорий в файле
// становится порядком строк в отчёте.
func ParsePricing(data []byte, currency string) (*entity.PricingTable, error) {
	var f pricingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pricing file: %w", err)
	}

	fallback := entity.ReferenceFallback
	if f.Fallback != nil {
		if err := f.Fallback.validate("fallback"); err != nil {
			return nil, err
		}
		fallback = f.Fallback.prices()
	}

	categories := make([]entity.CategoryPrice, 0, len(f.Categories))
	for i, c := range f.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("parse pricing file: category #%d has no name", i+1)
		}
		tiers := tierFile{Minor: c.Minor, Moderate: c.Moderate, Severe: c.Severe}
		if err := tiers.validate(name); err != nil {
			return nil, err
		}
		categories = append(categories, entity.CategoryPrice{Name: name, Prices: tiers.prices()})
	}

	cur := strings.TrimSpace(f.Currency)
	if cur == "" {
		cur = currency
	}
	return entity.NewPricingTable(cur, fallback, categories), nil
}

func (t tierFile) validate(name string) error {
	if t.Minor < 0 || t.Moderate < 0 || t.Severe < 0 {
		return fmt.Errorf("parse pricing file: %s: %w", name, errNegativePrice)
	}
	return nil
}

func (t tierFile) prices() entity.TierPrices {
	return entity.TierPrices{Minor: t.Minor, Moderate: t.Moderate, Severe: t.Severe}
}
