package models

type Title struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:256;not null"`
	Year        int    `json:"year" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	CategoryID  *int64 `json:"category_id,omitempty" gorm:"index"`

	// Associations. Deleting a category detaches it from its titles,
	// deleting a title or genre removes the join rows.
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
