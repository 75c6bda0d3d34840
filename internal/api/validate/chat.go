// Package validate holds request field validation shared by HTTP handlers.
package validate

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

// ChatTitle limits titles to 100 visible characters.
func ChatTitle(v string) error {
	if v == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(v) > 100 {
		return fmt.Errorf("title exceeds 100 characters")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// MessageContent bounds a chat message body.
func MessageContent(v string) error {
	if v == "" {
		return fmt.Errorf("content is required")
	}
	if len(v) > 32*1024 {
		return fmt.Errorf("content exceeds 32KB")
	}
	return nil
}
