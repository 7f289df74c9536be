package models

import "time"

// Guest lives in the external guest directory; the floor only keeps its id.
type Guest struct {
	ID           string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	FirstName    string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone        *string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Tags         []string   `gorm:"serializer:json" json:"tags"`
	AverageSpend float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"average_spend"`
	VisitCount   int        `gorm:"not null;default:0" json:"visit_count"`
	LastVisit    *time.Time `json:"last_visit,omitempty"`
	Language     *string    `gorm:"type:varchar(10)" json:"language,omitempty"`
	Allergies    []string   `gorm:"serializer:json" json:"allergies,omitempty"`
	Notes        *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// Staff lives in the external staff directory.
type Staff struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName keeps the directory table named like the rest of the schema.
func (Staff) TableName() string {
	return "staff"
}
