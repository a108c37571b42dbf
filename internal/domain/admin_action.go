package domain

import "time"

// AdminAction is the immutable audit record written for every administrative
// transition (withdrawal approvals, dispute resolutions, and so on).
type AdminAction struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	ActorID     int64  `json:"actor_id" gorm:"not null;index"`
	Action      string `json:"action" gorm:"type:varchar(48);not null"`
	TargetType  string `json:"target_type" gorm:"type:varchar(24);not null;index"`
	TargetID    int64  `json:"target_id" gorm:"not null;index"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Reference   string `json:"reference" gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at"`
}

func (AdminAction) TableName() string {
	return "admin_actions"
}
