package models

import "time"

type StudentProfile struct {
	Email          string    `json:"email" bson:"email"`
	Name           string    `json:"name" bson:"name"`
	RollNumber     string    `json:"roll_number" bson:"rollNumber"`
	University     string    `json:"university" bson:"university"`
	Program        string    `json:"program" bson:"program"`
	CurrentYear    string    `json:"current_year" bson:"currentYear"`
	GraduationYear string    `json:"graduation_year" bson:"graduationYear"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updatedAt"`
}

// StudentProfileFields are the user-editable columns of a profile.
type StudentProfileFields struct {
	Name           string `json:"name" validate:"max=200"`
	RollNumber     string `json:"roll_number" validate:"max=64"`
	University     string `json:"university" validate:"max=200"`
	Program        string `json:"program" validate:"max=200"`
	CurrentYear    string `json:"current_year" validate:"omitempty,numeric,max=4"`
	GraduationYear string `json:"graduation_year" validate:"omitempty,numeric,max=4"`
}

func (p *StudentProfile) Fields() StudentProfileFields {
	return StudentProfileFields{
		Name:           p.Name,
		RollNumber:     p.RollNumber,
		University:     p.University,
		Program:        p.Program,
		CurrentYear:    p.CurrentYear,
		GraduationYear: p.GraduationYear,
	}
}
