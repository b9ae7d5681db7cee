package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null"  json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string    `gorm:"size:255"                      json:"full_name,omitempty"`
	PasswordHash string    `gorm:"not null"                      json:"-"`
	IsActive     bool      `gorm:"default:true"                  json:"is_active"`
	IsAdmin      bool      `gorm:"default:false"                 json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is the label carried in access-token claims, frozen at issuance.
func (u *User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

type Client struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string      `gorm:"index;size:255;not null"  json:"name"`
	PhotoPath  string      `gorm:"size:512"                 json:"photo_path,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Procedures []Procedure `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Procedure struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID    uint      `gorm:"index;not null"           json:"client_id"`
	Date        time.Time `gorm:"index;not null"           json:"date"`
	Kind        string    `gorm:"size:100;not null"        json:"kind"`
	TonerAmount *float64  `json:"toner_amount,omitempty"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Notes       string    `gorm:"size:1000"                json:"notes,omitempty"`
	Haircut     bool      `gorm:"default:false"            json:"haircut"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
