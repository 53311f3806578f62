package model

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions
const (
	ActionAdd    = "add"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionUpload = "upload"
)

// AuditEntry records one admin mutation of the glossary.
type AuditEntry struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Action    string         `gorm:"not null;size:20;index" json:"action"`
	Term      string         `gorm:"size:255" json:"term,omitempty"`
	Actor     string         `gorm:"not null;size:255" json:"actor"`
	Backend   string         `gorm:"size:20" json:"backend"`
	Revision  string         `gorm:"size:64" json:"revision,omitempty"`
	Details   datatypes.JSON `json:"details,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

func (AuditEntry) TableName() string {
	return "glossary_audit_entries"
}
