package service

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// IssueCardForm is the issue-card screen. The issue date is always today.
type IssueCardForm struct {
	MediaType  string `json:"media_type"`
	CardNumber string `json:"card_number"`
	CustomerID string `json:"customer_id"`
}

func (f *IssueCardForm) normalize() {
	f.MediaType = strings.TrimSpace(f.MediaType)
	f.CardNumber = strings.TrimSpace(f.CardNumber)
	f.CustomerID = strings.TrimSpace(f.CustomerID)
}

func (f IssueCardForm) validate() error {
	switch {
	case f.MediaType == "":
		return required("media_type")
	case f.CardNumber == "":
		return required("card_number")
	case f.CustomerID == "":
		return required("customer_id")
	}
	return nil
}

// RegisterCardForm is the register-card screen.
type RegisterCardForm struct {
	CardID     string `json:"card_id"`
	CardType   string `json:"card_type"`
	IssueDate  string `json:"issue_date"`
	CustomerID string `json:"customer_id"`
}

func (f *RegisterCardForm) normalize() {
	f.CardID = strings.TrimSpace(f.CardID)
	f.CardType = strings.TrimSpace(f.CardType)
	f.IssueDate = strings.TrimSpace(f.IssueDate)
	f.CustomerID = strings.TrimSpace(f.CustomerID)
}

func (f RegisterCardForm) validate() error {
	switch {
	case f.CardID == "":
		return required("card_id")
	case f.CardType == "":
		return required("card_type")
	case f.IssueDate == "":
		return required("issue_date")
	case f.CustomerID == "":
		return required("customer_id")
	}
	if _, err := time.Parse(dateLayout, f.IssueDate); err != nil {
		return &ValidationError{Field: "issue_date", Message: "must be YYYY-MM-DD"}
	}
	return nil
}

// LoginForm is the login screen.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// normalize trims the email. The password is sent as typed; only the
// required check ignores surrounding spaces.
func (f *LoginForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f LoginForm) validate() error {
	switch {
	case f.Email == "":
		return required("email")
	case strings.TrimSpace(f.Password) == "":
		return required("password")
	}
	return nil
}

// SignupForm is the signup screen.
type SignupForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f *SignupForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
}

func (f SignupForm) validate() error {
	switch {
	case f.Name == "":
		return required("name")
	case f.Email == "":
		return required("email")
	case strings.TrimSpace(f.Password) == "":
		return required("password")
	}
	return nil
}
