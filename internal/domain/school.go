package domain

import "time"

type School struct {
	SchoolID  string    `json:"id" dynamodbav:"school_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Address   string    `json:"address" dynamodbav:"address"`
	City      string    `json:"city" dynamodbav:"city"`
	State     string    `json:"state" dynamodbav:"state"`
	Contact   string    `json:"contact" dynamodbav:"contact"`
	Image     string    `json:"image" dynamodbav:"image"`
	ImageKey  string    `json:"-" dynamodbav:"image_key"`
	EmailID   string    `json:"email_id" dynamodbav:"email_id"`
	CreatedBy string    `json:"created_by" dynamodbav:"created_by"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
