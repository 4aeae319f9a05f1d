package models

import "time"

// Account holds login credentials. It is never returned over the API.
type Account struct {
	Email        string    `dynamodbav:"email" json:"email"` // ✅ Partition Key
	ID           string    `dynamodbav:"id" json:"id"`
	PasswordHash string    `dynamodbav:"passwordHash" json:"-"`
	CreatedAt    time.Time `dynamodbav:"created" json:"created"`
}

// User is the authenticated identity handed to clients
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AccountsTable is the DynamoDB table name for login accounts
const AccountsTable = "Accounts"
