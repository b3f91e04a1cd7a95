package repository

import "time"

// Audit is the soft-delete envelope shared by every soft-deletable entity.
// All pointer fields are nil while the record is active.
type Audit struct {
	Active         bool       `json:"active"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	DeletedBy      *int64     `json:"deleted_by,omitempty"`
	DeletionReason *string    `json:"deletion_reason,omitempty"`
	DeletionIP     *string    `json:"deletion_ip,omitempty"`
	ReactivatedAt  *time.Time `json:"reactivated_at,omitempty"`
	ReactivatedBy  *int64     `json:"reactivated_by,omitempty"`
}

func decodeAudit(r Record) Audit {
	return Audit{
		Active:         recBool(r, "active"),
		DeletedAt:      recTimePtr(r, "deleted_at"),
		DeletedBy:      recInt64Ptr(r, "deleted_by"),
		DeletionReason: recStringPtr(r, "deletion_reason"),
		DeletionIP:     recStringPtr(r, "deletion_ip"),
		ReactivatedAt:  recTimePtr(r, "reactivated_at"),
		ReactivatedBy:  recInt64Ptr(r, "reactivated_by"),
	}
}
