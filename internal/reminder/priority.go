package reminder

// Presentation is how a priority is shown to people.
type Presentation struct {
	Label string
	Icon  string
	Color string
}

var presentations = map[Priority]Presentation{
	PriorityHigh:   {Label: "High", Icon: "▲", Color: "#f44336"},
	PriorityMedium: {Label: "Medium", Icon: "■", Color: "#ff9800"},
	PriorityLow:    {Label: "Low", Icon: "▼", Color: "#4caf50"},
}

// Present returns the presentation of p. Unknown or empty priorities are
// shown as MEDIUM.
func (p Priority) Present() Presentation {
	if pr, ok := presentations[p]; ok {
		return pr
	}
	return presentations[PriorityMedium]
}
