package score

// Entry is one department field with the value entered for it.
type Entry struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// Card is a record's scores split per department: the department's own fields, in order,
// plus the sheet-specific columns no department models (percentiles, averages, indices..).
type Card struct {
	Department Department        `json:"department"`
	Fields     []Entry           `json:"fields"`
	Extra      map[string]string `json:"extra"`
}

// NewCard splits scores into the fixed field set of dept and the open extension map.
// Without a known department every column lands in Extra.
func NewCard(dept Department, scores map[string]string) Card {
	card := Card{Department: dept, Extra: make(map[string]string)}
	claimed := make(map[string]bool)
	for _, f := range specs[dept].Fields {
		entry := Entry{Field: f}
		if v, ok := scores[f.Name]; ok {
			entry.Value = v
			claimed[f.Name] = true
		} else if k, ok := matchKey(scores, f.Name); ok {
			entry.Value = scores[k]
			claimed[k] = true
		}
		card.Fields = append(card.Fields, entry)
	}
	for k, v := range scores {
		if !claimed[k] {
			card.Extra[k] = v
		}
	}
	return card
}

// Value returns the value of a department field or extra column.
func (c Card) Value(name string) (string, bool) {
	for _, e := range c.Fields {
		if e.Field.Name == name {
			return e.Value, true
		}
	}
	return Lookup(c.Extra, name)
}

// Complete reports whether every required field of the card has a value.
func (c Card) Complete() bool {
	return IsComplete(c.Department, c.Scores())
}

// Total returns the spreadsheet-computed total carried in the extension columns.
func (c Card) Total() float64 {
	return AggregateSum(c.Extra)
}

// Scores flattens the card back into a header-keyed map.
func (c Card) Scores() map[string]string {
	scores := make(map[string]string, len(c.Fields)+len(c.Extra))
	for k, v := range c.Extra {
		scores[k] = v
	}
	for _, e := range c.Fields {
		scores[e.Field.Name] = e.Value
	}
	return scores
}
