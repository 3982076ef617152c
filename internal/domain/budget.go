package domain

type BudgetItem struct {
	Category           string  `json:"category"`
	Description        string  `json:"description"`
	LaborHours         float64 `json:"laborHours"`
	LaborCost          float64 `json:"laborCost"`
	MaterialsCost      float64 `json:"materialsCost"`
	ContingencyPercent float64 `json:"contingencyPercent"`
}

// Contingency is the reserve added on top of labor and materials.
func (b BudgetItem) Contingency() float64 {
	return (b.LaborCost + b.MaterialsCost) * b.ContingencyPercent / 100
}

// Total is labor + materials + contingency.
func (b BudgetItem) Total() float64 {
	return b.LaborCost + b.MaterialsCost + b.Contingency()
}

type Budget struct {
	BudgetItems []BudgetItem `json:"budgetItems"`
}

// Total sums every item. A nil budget totals zero.
func (b *Budget) Total() float64 {
	if b == nil {
		return 0
	}
	var sum float64
	for _, item := range b.BudgetItems {
		sum += item.Total()
	}
	return sum
}

// Empty reports whether the budget carries no items.
func (b *Budget) Empty() bool {
	return b == nil || len(b.BudgetItems) == 0
}
