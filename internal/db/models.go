// internal/db/models.go
package db

import "time"

// Statusy ImportFile
const (
	ImportPending = 0
	ImportDone    = 1
	ImportError   = 2
)

// import_files: zrzuty zamówień wczytane przez importer
type ImportFile struct {
	ImportID    uint   `gorm:"primaryKey;column:import_id"`
	Filename    string `gorm:"index"`
	SHA256      string `gorm:"uniqueIndex"`
	SizeBytes   int64
	OrderCount  int
	Status      int       `gorm:"index"` // 0=pending, 1=done, 2=error
	LastError   string    `gorm:"type:text"`
	ReceivedAt  time.Time `gorm:"autoCreateTime"`
	ProcessedAt *time.Time
}

// status_overrides: lokalnie oznaczone zamówienia (order_id -> "Complete")
type StatusOverride struct {
	OrderID   string `gorm:"primaryKey;size:191"`
	Status    string `gorm:"size:32"`
	UpdatedAt time.Time
}

// drobne metadane (ostatni refresh itd.)
type KV struct {
	K string `gorm:"primaryKey;size:191"`
	V string
}
