package identity

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserRegistration binds one wallet to one device fingerprint.
type UserRegistration struct {
	RegistrationID    string    `gorm:"column:registration_id;type:varchar(36);primaryKey" json:"registrationId"`
	WalletAddress     string    `gorm:"column:wallet_address;type:varchar(42);not null" json:"walletAddress"`
	WalletKey         string    `gorm:"column:wallet_key;type:varchar(42);not null;uniqueIndex" json:"-"`
	DeviceFingerprint string    `gorm:"column:device_fingerprint;type:varchar(512);not null;uniqueIndex" json:"deviceFingerprint"`
	RegisteredAt      time.Time `gorm:"column:registered_at;not null" json:"registeredAt"`
	Verified          bool      `gorm:"column:verified;not null" json:"verified"`
	LastActivity      time.Time `gorm:"column:last_activity;not null" json:"lastActivity"`
}

func (UserRegistration) TableName() string { return "user_registration" }

func (r *UserRegistration) BeforeSave(tx *gorm.DB) error {
	r.WalletKey = WalletKey(r.WalletAddress)
	return nil
}

// WalletKey is the comparison form of a wallet address.
func WalletKey(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
