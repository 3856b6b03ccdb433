// model/review.go
package model

import "time"

type Review struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	UserEmail string    `json:"user_email"`
	Rating    int       `json:"rating"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

type ServiceFeedback struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Comments  string    `json:"comments"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
