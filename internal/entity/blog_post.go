package entity

import "time"

// DateLayout is the publication date format stamped on new posts,
// e.g. "April 02, 2024".
const DateLayout = "January 02, 2006"

type BlogPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"author"`
	Title     string    `gorm:"size:250;uniqueIndex;not null" json:"title"`
	Subtitle  string    `gorm:"size:250;not null" json:"subtitle"`
	Date      string    `gorm:"size:250;not null" json:"date"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImgURL    string    `gorm:"column:img_url;size:250;not null" json:"img_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}
