package entities

import "time"

type Book struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Title            string     `gorm:"index;size:512;not null" json:"title"`
	Author           string     `gorm:"index;size:256;not null" json:"author"`
	IsCheckedOut     bool       `gorm:"not null;default:false" json:"is_checked_out"`
	LastCheckedOutAt *time.Time `json:"last_checked_out_at"`
	LastCheckedInAt  *time.Time `json:"last_checked_in_at"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

// StatusLabel is the human readable availability shown in the UI and the assistant context.
func (b Book) StatusLabel() string {
	if b.IsCheckedOut {
		return "Checked Out"
	}
	return "Available"
}
