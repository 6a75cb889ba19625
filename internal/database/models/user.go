package models

// User represents an authenticated principal. Authentication protocol
// details live outside this service; the auth layer resolves a token to
// a user row and the tenancy middleware picks the active organization
// from the user's memberships.
type User struct {
	BaseModel
	Email    string `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email,max=255"`
	FullName string `json:"full_name" gorm:"not null;size:200" validate:"required,max=200"`

	// Relationships
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}
