package models

// Account is a caller known to the service, established out-of-band by the
// account registration subsystem. The core only reads accounts to
// authenticate bearer tokens.
type Account struct {
	UserID         string  `gorm:"primaryKey" json:"user_id"`
	CreatedTs      int64   `gorm:"not null" json:"created_ts"`
	ConsentVersion *string `json:"consent_version,omitempty"`
}

func (Account) TableName() string { return "accounts" }

// AuthToken is an opaque bearer token issued to an account.
type AuthToken struct {
	Token  string `gorm:"primaryKey" json:"-"`
	UserID string `gorm:"not null;index" json:"user_id"`
}

func (AuthToken) TableName() string { return "tokens" }
