package model

type Task struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	IsCompleted bool   `gorm:"not null;default:false" json:"isCompleted"`
}
