package service

import (
	"fmt"
	"regexp"
	"time"

	"reviewhub/internal/api/apierrors"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// Limits carries the configured field length limits. Built once at startup
// from the config and shared by every service.
type Limits struct {
	Username int
	Email    int
	Name     int
	Slug     int
	Code     int
}

func validateName(fe apierrors.FieldErrors, limits *Limits, name string) apierrors.FieldErrors {
	if name == "" {
		return fe.Add("name", "this field is required")
	}
	if len(name) > limits.Name {
		return fe.Add("name", fmt.Sprintf("must be at most %d characters", limits.Name))
	}
	return fe
}

func validateSlug(fe apierrors.FieldErrors, limits *Limits, slug string) apierrors.FieldErrors {
	if slug == "" {
		return fe.Add("slug", "this field is required")
	}
	if len(slug) > limits.Slug {
		return fe.Add("slug", fmt.Sprintf("must be at most %d characters", limits.Slug))
	}
	if !slugPattern.MatchString(slug) {
		return fe.Add("slug", "must contain only letters, numbers, hyphens and underscores")
	}
	return fe
}

func validateUsername(fe apierrors.FieldErrors, limits *Limits, username string) apierrors.FieldErrors {
	if username == "" {
		return fe.Add("username", "this field is required")
	}
	if username == "me" {
		return fe.Add("username", `"me" is a reserved username`)
	}
	if len(username) > limits.Username {
		return fe.Add("username", fmt.Sprintf("must be at most %d characters", limits.Username))
	}
	if !usernamePattern.MatchString(username) {
		return fe.Add("username", "may contain only letters, digits and @/./+/-/_ characters")
	}
	return fe
}

func validateEmail(fe apierrors.FieldErrors, limits *Limits, email string) apierrors.FieldErrors {
	if email == "" {
		return fe.Add("email", "this field is required")
	}
	if len(email) > limits.Email {
		return fe.Add("email", fmt.Sprintf("must be at most %d characters", limits.Email))
	}
	return fe
}

func validateCode(fe apierrors.FieldErrors, limits *Limits, code string) apierrors.FieldErrors {
	if code == "" {
		return fe.Add("confirmation_code", "this field is required")
	}
	if len(code) > limits.Code {
		return fe.Add("confirmation_code", fmt.Sprintf("must be at most %d characters", limits.Code))
	}
	return fe
}

// validateYear rejects titles from the future. The comparison is at year
// granularity against the current calendar year.
func validateYear(fe apierrors.FieldErrors, year int) apierrors.FieldErrors {
	if year > time.Now().Year() {
		return fe.Add("year", "the title has not been released yet")
	}
	return fe
}

func validateScore(fe apierrors.FieldErrors, score int) apierrors.FieldErrors {
	if score < 1 || score > 10 {
		return fe.Add("score", "must be between 1 and 10")
	}
	return fe
}

// fieldErrorsOrNil avoids returning a typed non-nil error for an empty set
func fieldErrorsOrNil(fe apierrors.FieldErrors) error {
	if len(fe) > 0 {
		return fe
	}
	return nil
}
