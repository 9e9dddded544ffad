package devserver

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// One-time code purposes
const (
	otpPurposeVerify = "verify-email"
	otpPurposeReset  = "reset-password"
)

// User is an account; role is "user" or "admin"
type User struct {
	BaseModel
	Email         string     `json:"email" gorm:"unique;not null"`
	PasswordHash  string     `json:"-" gorm:"not null"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Phone         string     `json:"phone,omitempty"`
	Bio           string     `json:"bio,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	Address       string     `json:"address,omitempty"`
	Role          string     `json:"role" gorm:"not null;default:user"`
	EmailVerified bool       `json:"emailVerified" gorm:"not null;default:false"`
	OTPCode       string     `json:"-"`
	OTPPurpose    string     `json:"-"`
	OTPExpiresAt  *time.Time `json:"-"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Property is a listing
type Property struct {
	BaseModel
	Title          string    `json:"title" gorm:"not null"`
	Description    string    `json:"description,omitempty"`
	Type           string    `json:"type" gorm:"not null;index"`
	PropertyStatus string    `json:"propertyStatus" gorm:"not null;default:active;index"`
	Price          float64   `json:"price" gorm:"not null;default:0"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city" gorm:"index"`
	State          string    `json:"state,omitempty"`
	Country        string    `json:"country,omitempty"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      int       `json:"bathrooms"`
	Area           float64   `json:"area,omitempty"`
	Images         []string  `json:"images,omitempty" gorm:"serializer:json"`
	Featured       bool      `json:"featured" gorm:"not null;default:false"`
	OwnerID        string    `json:"ownerId" gorm:"not null;index"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Property{})
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
