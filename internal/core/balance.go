package core

// ComputeBalance folds the full transaction set into its aggregate balance,
// partitioning by type and summing cents from zero. The result does not
// depend on the ordering of the input.
func ComputeBalance(transactions []Transaction) Balance {
	var income, outcome int64
	for _, t := range transactions {
		switch t.Type {
		case Income:
			income += t.Value.Cents
		case Outcome:
			outcome += t.Value.Cents
		}
	}
	return Balance{
		Income:  Money{Cents: income},
		Outcome: Money{Cents: outcome},
		Total:   Money{Cents: income - outcome},
	}
}
