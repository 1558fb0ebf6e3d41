package model

import "time"

type Couple struct {
	ID        string       `db:"id" json:"id"`
	User1ID   string       `db:"user1_id" json:"user1Id"`
	User2ID   *string      `db:"user2_id" json:"user2Id,omitempty"`
	Status    CoupleStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

// HasMember reports whether userID is one of the couple's two partners.
func (c *Couple) HasMember(userID string) bool {
	if c.User1ID == userID {
		return true
	}
	return c.User2ID != nil && *c.User2ID == userID
}

// PartnerOf returns the other member's ID, or empty if the couple is not
// complete or userID is not a member.
func (c *Couple) PartnerOf(userID string) string {
	if c.User2ID == nil {
		return ""
	}
	switch userID {
	case c.User1ID:
		return *c.User2ID
	case *c.User2ID:
		return c.User1ID
	}
	return ""
}

type Invitation struct {
	ID        string     `db:"id" json:"id"`
	CoupleID  string     `db:"couple_id" json:"coupleId"`
	Code      string     `db:"code" json:"code"`
	CreatedBy string     `db:"created_by" json:"createdBy"`
	ExpiresAt time.Time  `db:"expires_at" json:"expiresAt"`
	UsedAt    *time.Time `db:"used_at" json:"usedAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

type CreateInvitationParams struct {
	CoupleID  string
	Code      string
	CreatedBy string
	ExpiresAt time.Time
}
