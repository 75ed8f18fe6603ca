package models

import "github.com/google/uuid"

const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review is a customer product review. Submissions start pending; only
// approved reviews are shown on the storefront.
type Review struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Product       *Product  `json:"product,omitempty"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	Status        string    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
}
