package safety

// Resource is one crisis support contact.
type Resource struct {
	Name        string `json:"name"`
	Number      string `json:"number"`
	Description string `json:"description"`
}

// CrisisResources returns the support catalogue for Australia, grouped the
// way clients render it.
func CrisisResources() map[string][]Resource {
	return map[string][]Resource{
		"emergency": {
			{
				Name:        "Emergency Services",
				Number:      "000",
				Description: "Call 000 for immediate emergency assistance",
			},
		},
		"crisis_support": {
			{
				Name:        "Lifeline",
				Number:      "13 11 14",
				Description: "24/7 crisis support and suicide prevention",
			},
			{
				Name:        "Beyond Blue",
				Number:      "1300 22 4636",
				Description: "Mental health support",
			},
			{
				Name:        "Relationships Australia",
				Number:      "1300 364 277",
				Description: "Relationship counseling and support",
			},
		},
		"domestic_violence": {
			{
				Name:        "1800RESPECT",
				Number:      "1800 737 732",
				Description: "National sexual assault, domestic and family violence counseling",
			},
		},
	}
}
