package middleware

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	phonePattern  = regexp.MustCompile(`^\d{10}$`)
	otpPattern    = regexp.MustCompile(`^\d{6}$`)
	chatIDPattern = regexp.MustCompile(`^chat-\d+$`)
)

// ValidateName validates a profile name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("please enter your name")
	}
	if len(name) > 128 {
		return errors.New("name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("name must be valid UTF-8")
	}
	return nil
}

// ValidatePhone validates a 10-digit phone number.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return errors.New("enter a valid 10-digit phone number")
	}
	return nil
}

// ValidateOTPFormat validates the shape of a one-time code. Whether
// the code matches the issued one is the auth service's concern.
func ValidateOTPFormat(otp string) error {
	if !otpPattern.MatchString(otp) {
		return errors.New("enter the 6-digit OTP")
	}
	return nil
}

// ValidateChatID validates a chat identifier.
func ValidateChatID(id string) error {
	if !chatIDPattern.MatchString(id) {
		return errors.New("invalid chat ID format")
	}
	return nil
}

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}
