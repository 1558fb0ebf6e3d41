package model

import "time"

type Argument struct {
	ID        string           `db:"id" json:"id"`
	CoupleID  string           `db:"couple_id" json:"coupleId"`
	Title     string           `db:"title" json:"title"`
	Category  ArgumentCategory `db:"category" json:"category"`
	Priority  ArgumentPriority `db:"priority" json:"priority"`
	Status    ArgumentStatus   `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

type CreateArgumentParams struct {
	CoupleID string
	Title    string
	Category ArgumentCategory
	Priority ArgumentPriority
}
