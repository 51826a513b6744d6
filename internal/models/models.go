package models

import "time"

type User struct {
	ID         int64
	Name       string
	Email      string
	PassHash   []byte
	Otp        *string
	OtpExpiry  *time.Time
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Claims are the identity attributes embedded into a session token.
type Claims struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EmailMessage struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Code    string `json:"code"`
}
