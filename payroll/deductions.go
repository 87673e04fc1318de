package payroll

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Category groups deduction line items on payslips and reports.
type Category string

const (
	CategoryGovernment Category = "government"
	CategoryLoans      Category = "loans"
	CategoryOther      Category = "other"
	CategoryCustom     Category = "custom"
)

// DeductionLineItem is one amount withheld from gross pay.
type DeductionLineItem struct {
	Code        string
	Category    Category
	Amount      decimal.Decimal
	Description string
}

// CatalogEntry describes a known deduction code.
type CatalogEntry struct {
	Code        string   `json:"code"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Catalog maps deduction codes to categories. Lookups are exact: "gsis" is not
// "GSIS", and anything unknown is classified as custom.
type Catalog struct {
	entries map[string]CatalogEntry
}

// NewCatalog builds a catalog, rejecting duplicate codes and custom entries.
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]CatalogEntry, len(entries))}
	for _, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("catalog entry has no code")
		}
		switch e.Category {
		case CategoryGovernment, CategoryLoans, CategoryOther:
		default:
			return nil, fmt.Errorf("catalog entry %s: invalid category %q", e.Code, e.Category)
		}
		if _, dup := c.entries[e.Code]; dup {
			return nil, fmt.Errorf("catalog entry %s: duplicate code", e.Code)
		}
		c.entries[e.Code] = e
	}
	return c, nil
}

// DefaultCatalog lists the mandatory contributions, agency loans and
// voluntary deductions withheld from university payroll.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]CatalogEntry{
		{Code: "GSIS", Category: CategoryGovernment, Description: "GSIS life and retirement premium"},
		{Code: "PHILHEALTH", Category: CategoryGovernment, Description: "PhilHealth contribution"},
		{Code: "PAGIBIG", Category: CategoryGovernment, Description: "Pag-IBIG fund contribution"},
		{Code: "WTAX", Category: CategoryGovernment, Description: "Withholding tax"},
		{Code: "GSIS_CONSO", Category: CategoryLoans, Description: "GSIS consolidated loan"},
		{Code: "GSIS_POLICY", Category: CategoryLoans, Description: "GSIS policy loan"},
		{Code: "GSIS_EMERGENCY", Category: CategoryLoans, Description: "GSIS emergency loan"},
		{Code: "PAGIBIG_MPL", Category: CategoryLoans, Description: "Pag-IBIG multi-purpose loan"},
		{Code: "PAGIBIG_CALAMITY", Category: CategoryLoans, Description: "Pag-IBIG calamity loan"},
		{Code: "LBP_LOAN", Category: CategoryLoans, Description: "Land Bank salary loan"},
		{Code: "UNION_DUES", Category: CategoryOther, Description: "Employees union dues"},
		{Code: "COOP", Category: CategoryOther, Description: "Cooperative share capital"},
		{Code: "MORTUARY", Category: CategoryOther, Description: "Mortuary aid"},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the entry for an exact code.
func (c *Catalog) Lookup(code string) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	e, ok := c.entries[code]
	return e, ok
}

// Categorize returns the catalog category for code, or custom.
func (c *Catalog) Categorize(code string) Category {
	if e, ok := c.Lookup(code); ok {
		return e.Category
	}
	return CategoryCustom
}

// Item builds a classified line item. A blank description takes the catalog's.
func (c *Catalog) Item(code string, amount decimal.Decimal, description string) DeductionLineItem {
	item := DeductionLineItem{Code: code, Category: CategoryCustom, Amount: amount, Description: description}
	if e, ok := c.Lookup(code); ok {
		item.Category = e.Category
		if item.Description == "" {
			item.Description = e.Description
		}
	}
	return item
}

// Classify re-categorizes items against the catalog.
func (c *Catalog) Classify(items []DeductionLineItem) []DeductionLineItem {
	out := make([]DeductionLineItem, len(items))
	for i, it := range items {
		out[i] = c.Item(it.Code, it.Amount, it.Description)
	}
	return out
}

// Entries returns the catalog sorted by category then code.
func (c *Catalog) Entries() []CatalogEntry {
	if c == nil {
		return nil
	}
	out := make([]CatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return categoryOrder(out[i].Category) < categoryOrder(out[j].Category)
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func categoryOrder(c Category) int {
	switch c {
	case CategoryGovernment:
		return 0
	case CategoryLoans:
		return 1
	case CategoryOther:
		return 2
	default:
		return 3
	}
}

// TotalsByCategory sums deduction amounts per category.
func TotalsByCategory(items []DeductionLineItem) map[Category]decimal.Decimal {
	totals := make(map[Category]decimal.Decimal)
	for _, it := range items {
		totals[it.Category] = totals[it.Category].Add(it.Amount)
	}
	return totals
}
