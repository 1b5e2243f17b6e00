package models

import "time"

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Subject   string    `bson:"subject" json:"subject"`
	Message   string    `bson:"message" json:"message"`
	RemoteIP  string    `bson:"remote_ip,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Sent      bool      `bson:"sent" json:"sent"` // set once the notification mail went out
}

// ContactForm is the posted contact form.
type ContactForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Subject string `form:"subject"`
	Message string `form:"message"`
}
