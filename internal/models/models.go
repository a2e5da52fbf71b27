// Package models defines the data structures shared by repositories and
// services.
package models

import "time"

// UserCredential is the single master-password row. The auth hash carries
// its own salt; EncryptionSalt seeds the independent data-encryption key.
type UserCredential struct {
	ID             int64
	Username       string
	PasswordHash   string
	EncryptionSalt string
	AutoLockSecs   int64
	CreatedAt      time.Time
}

// Profile groups records into separate vaults under one master password.
type Profile struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// ProfileWithCount is a profile plus its live record count.
type ProfileWithCount struct {
	Profile
	RecordCount int64
}

// Record is one encrypted vault entry. Ciphertext and Nonce are stored
// separately; a record with an empty Nonce is a legacy plaintext row that
// predates encryption at rest.
type Record struct {
	UUID       string `json:"uuid"`
	ProfileID  int64  `json:"-"`
	Label      string `json:"label"`
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
	Version    int64  `json:"version"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	DeletedAt  string `json:"deleted_at,omitempty"`
}

// Deleted reports whether the record is a tombstone.
func (r *Record) Deleted() bool {
	return r.DeletedAt != ""
}

// RecordPayload is the decrypted body of a record.
type RecordPayload struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	URL        string `json:"url,omitempty"`
	Notes      string `json:"notes,omitempty"`
	TOTPSecret string `json:"totp_secret,omitempty"`
}

// PairedDevice is a remembered sync peer.
type PairedDevice struct {
	ID           int64
	Name         string
	PublicKey    []byte
	SharedSecret []byte
	PairedAt     time.Time
	LastSyncAt   time.Time
}

// SyncLogEntry records the outcome of one completed merge.
type SyncLogEntry struct {
	ID         int64
	DeviceName string
	Direction  string
	Applied    int64
	Skipped    int64
	Deleted    int64
	Conflicts  int64
	SyncedAt   time.Time
}

// MergeStats counts what a merge did with an incoming batch.
type MergeStats struct {
	Applied   int64
	Skipped   int64
	Deleted   int64
	Conflicts int64
}

// ExportBundle is the payload one replica ships to its peer. Version is the
// wire format revision; a receiver refuses bundles it does not understand.
type ExportBundle struct {
	Version        int      `json:"version"`
	EncryptionSalt string   `json:"encryption_salt,omitempty"`
	ProfileName    string   `json:"profile_name"`
	Records        []Record `json:"records"`
}
