package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

const (
	maxUsernameLength = 150
	maxEmailLength    = 254
	maxPasswordLength = 128
	maxTitleLength    = 100
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

func validateUsername(username string) error {
	switch {
	case username == "":
		return invalid("username", "this field is required")
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return invalid("username", "ensure this field has no more than 150 characters")
	case !usernamePattern.MatchString(username):
		return invalid("username", "may contain only letters, numbers, and @/./+/-/_ characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > maxEmailLength {
		return invalid("email", "enter a valid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "enter a valid email address")
	}
	return nil
}

func validatePassword(password string) error {
	switch {
	case password == "":
		return invalid("password", "this field is required")
	case len(password) > maxPasswordLength:
		return invalid("password", "ensure this field has no more than 128 characters")
	}
	return nil
}

func validateTitle(title string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return invalid("title", "this field may not be blank")
	case utf8.RuneCountInString(title) > maxTitleLength:
		return invalid("title", "ensure this field has no more than 100 characters")
	}
	return nil
}

func validateStatus(status model.TaskStatus) error {
	if !status.Valid() {
		return invalid("status", `"`+string(status)+`" is not a valid choice`)
	}
	return nil
}
