package models

import "time"

// Category: направление прослушивания.
type Category string

const (
	CategoryDancing Category = "dancing"
	CategorySinging Category = "singing"
	CategoryActing  Category = "acting"
)

// Categories в порядке показа в форме.
var Categories = []Category{CategoryDancing, CategorySinging, CategoryActing}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Label: подпись для выпадающего списка.
func (c Category) Label() string {
	switch c {
	case CategoryDancing:
		return "Dancing"
	case CategorySinging:
		return "Singing"
	case CategoryActing:
		return "Acting"
	}
	return string(c)
}

// Contact: заявка с формы прослушивания. После создания не меняется.
type Contact struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Message     string    `db:"message" json:"message"`
	Category    Category  `db:"category" json:"category"`
	DateOfBirth time.Time `db:"dob" json:"dob"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
