package models

// Medium identifies the kind of third-party identifier an invite targets.
const (
	MediumEmail  = "email"
	MediumMSISDN = "msisdn"
)

// InviteToken is a pending room invite keyed to a 3PID that has not yet been
// bound to an mxid. Rows are immutable after creation; the bind path reads
// them but never removes them.
type InviteToken struct {
	Token      string  `gorm:"primaryKey" json:"token"`
	Medium     string  `gorm:"not null;index:idx_invite_tokens_address,priority:1" json:"medium"`
	Address    string  `gorm:"not null;index:idx_invite_tokens_address,priority:2" json:"address"`
	RoomID     string  `gorm:"not null" json:"room_id"`
	Sender     string  `gorm:"not null" json:"sender"`
	SpaceID    *string `json:"space_id,omitempty"`
	RoomName   *string `json:"room_name,omitempty"`
	SpaceName  *string `json:"space_name,omitempty"`
	ReceivedTs int64   `gorm:"not null;index" json:"received_ts"`
}

// TableName keeps the historical table name used by the wire protocol docs.
func (InviteToken) TableName() string { return "invite_tokens" }
