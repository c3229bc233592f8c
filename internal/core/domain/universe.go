package domain

// Entity is a tracked company.
type Entity struct {
	// Ticker is the entity code stored in chunk metadata.
	Ticker string

	// CIK is the SEC central index key.
	CIK string

	// Aliases are uppercase substrings that identify the entity in a query.
	// The ticker itself is always an alias.
	Aliases []string
}

// Universe is the closed vocabulary of entities and periods the
// retriever can recognise.
type Universe struct {
	Entities []Entity
	Periods  []string
}

// DefaultUniverse returns the three tracked companies and fiscal years 2022-2024.
func DefaultUniverse() Universe {
	return Universe{
		Entities: []Entity{
			{Ticker: "MSFT", CIK: "0000789019", Aliases: []string{"MICROSOFT", "MSFT"}},
			{Ticker: "GOOGL", CIK: "0001652044", Aliases: []string{"GOOGLE", "ALPHABET", "GOOGL"}},
			{Ticker: "NVDA", CIK: "0001045810", Aliases: []string{"NVIDIA", "NVDA"}},
		},
		Periods: []string{"2022", "2023", "2024"},
	}
}

// Tickers returns entity codes in declaration order.
func (u Universe) Tickers() []string {
	out := make([]string, 0, len(u.Entities))
	for _, e := range u.Entities {
		out = append(out, e.Ticker)
	}
	return out
}

// Entity looks up an entity by ticker.
func (u Universe) Entity(ticker string) (Entity, bool) {
	for _, e := range u.Entities {
		if e.Ticker == ticker {
			return e, true
		}
	}
	return Entity{}, false
}
