package models

// Admin is a back-office operator account.
type Admin struct {
	BaseModel
	Email        string `gorm:"uniqueIndex" json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

// AuditLog records every admin mutation. One row per operation.
type AuditLog struct {
	BaseModel
	AdminEmail string `gorm:"index" json:"admin_email"`
	Action     string `json:"action"`
	Details    string `json:"details"`
}
