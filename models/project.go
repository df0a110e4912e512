package models

import "time"

// Project is a portfolio entry. Optional columns are nullable and independent.
type Project struct {
	ID                    int64     `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Title                 string    `json:"title" db:"title" gorm:"type:varchar(200);not null"`
	ShortDescription      string    `json:"short_description" db:"short_description" gorm:"type:text;not null"`
	TechStack             *string   `json:"tech_stack" db:"tech_stack" gorm:"type:varchar(300)"`
	GithubURL             *string   `json:"github_url" db:"github_url" gorm:"column:github_url;type:varchar(300)"`
	LiveURL               *string   `json:"live_url" db:"live_url" gorm:"column:live_url;type:varchar(300)"`
	ProblemStatement      *string   `json:"problem_statement" db:"problem_statement" gorm:"type:text"`
	WhyBuilt              *string   `json:"why_built" db:"why_built" gorm:"type:text"`
	Architecture          *string   `json:"architecture" db:"architecture" gorm:"type:text"`
	ImplementationDetails *string   `json:"implementation_details" db:"implementation_details" gorm:"type:text"`
	Challenges            *string   `json:"challenges" db:"challenges" gorm:"type:text"`
	Learnings             *string   `json:"learnings" db:"learnings" gorm:"type:text"`
	FutureImprovements    *string   `json:"future_improvements" db:"future_improvements" gorm:"type:text"`
	CreatedAt             time.Time `json:"created_at" db:"created_at" gorm:"type:timestamptz;not null;autoCreateTime"`
}

func (Project) TableName() string {
	return "projects"
}
