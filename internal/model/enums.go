package model

type ArgumentCategory string

const (
	CategoryFinances      ArgumentCategory = "finances"
	CategoryCommunication ArgumentCategory = "communication"
	CategoryValues        ArgumentCategory = "values"
	CategoryIntimacy      ArgumentCategory = "intimacy"
	CategoryFamily        ArgumentCategory = "family"
	CategoryLifestyle     ArgumentCategory = "lifestyle"
	CategoryFuturePlans   ArgumentCategory = "future_plans"
	CategoryOther         ArgumentCategory = "other"
)

var ArgumentCategories = []ArgumentCategory{
	CategoryFinances, CategoryCommunication, CategoryValues, CategoryIntimacy,
	CategoryFamily, CategoryLifestyle, CategoryFuturePlans, CategoryOther,
}

func (c ArgumentCategory) Valid() bool {
	for _, v := range ArgumentCategories {
		if c == v {
			return true
		}
	}
	return false
}

type ArgumentPriority string

const (
	PriorityLow    ArgumentPriority = "low"
	PriorityMedium ArgumentPriority = "medium"
	PriorityHigh   ArgumentPriority = "high"
	PriorityUrgent ArgumentPriority = "urgent"
)

func (p ArgumentPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type ArgumentStatus string

const (
	StatusDraft    ArgumentStatus = "draft"
	StatusActive   ArgumentStatus = "active"
	StatusAnalyzed ArgumentStatus = "analyzed"
	StatusResolved ArgumentStatus = "resolved"
	StatusArchived ArgumentStatus = "archived"
)

type CoupleStatus string

const (
	CoupleStatusPending CoupleStatus = "pending"
	CoupleStatusActive  CoupleStatus = "active"
)
