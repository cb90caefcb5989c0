package service

import (
	"fmt"
	"unicode"
)

type passwordPolicyError struct {
	reason string
}

func (e passwordPolicyError) Error() string {
	return e.reason
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

// validatePassword 最小长度且同时包含字母与数字
func validatePassword(minLength int, password string) error {
	if minLength > 0 && len([]rune(password)) < minLength {
		return passwordPolicyError{reason: fmt.Sprintf("password must be at least %d characters", minLength)}
	}
	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return passwordPolicyError{reason: "password must contain letters and numbers"}
	}
	return nil
}
