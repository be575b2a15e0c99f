package health

import (
	"time"

	"gorm.io/datatypes"
)

// HealthSubmission is one accepted metric snapshot. Rows are append-only.
type HealthSubmission struct {
	ID  string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Seq int64  `gorm:"column:seq;not null;uniqueIndex" json:"seq"`

	UserAddress string  `gorm:"column:user_address;type:varchar(42);not null;index" json:"userAddress"`
	HeartRate   float64 `gorm:"column:heart_rate;not null" json:"heartRate"`
	SleepHours  float64 `gorm:"column:sleep_hours;not null" json:"sleepHours"`
	Steps       int64   `gorm:"column:steps;not null" json:"steps"`
	Timestamp   int64   `gorm:"column:timestamp;not null;index" json:"timestamp"`

	DataHash string `gorm:"column:data_hash;type:varchar(66);not null;index" json:"dataHash"`
	Proof    string `gorm:"column:proof;type:text;not null" json:"zkProof"`

	ReceivedAt time.Time `gorm:"column:received_at;not null" json:"receivedAt"`
}

func (HealthSubmission) TableName() string { return "health_submission" }

// PlatformStatsID is the primary key of the single stats snapshot row.
const PlatformStatsID = "platform"

// PlatformStats is the materialized snapshot derived from the submission log.
// Aggregate holds the JSON-encoded aggregation snapshot computed at the same write.
type PlatformStats struct {
	ID                 string         `gorm:"column:id;type:varchar(32);primaryKey" json:"-"`
	TotalSubmissions   int64          `gorm:"column:total_submissions;not null" json:"totalSubmissions"`
	UniqueContributors int64          `gorm:"column:unique_contributors;not null" json:"uniqueContributors"`
	LastUpdated        time.Time      `gorm:"column:last_updated;not null" json:"lastUpdated"`
	Aggregate          datatypes.JSON `gorm:"column:aggregate" json:"aggregate,omitempty"`
}

func (PlatformStats) TableName() string { return "platform_stats" }
