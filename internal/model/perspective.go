package model

import "time"

type Perspective struct {
	ID         string    `db:"id" json:"id"`
	ArgumentID string    `db:"argument_id" json:"argumentId"`
	UserID     string    `db:"user_id" json:"userId"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type CreatePerspectiveParams struct {
	ArgumentID string
	UserID     string
	Content    string
}
