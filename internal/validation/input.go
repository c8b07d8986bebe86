package validation

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input limits.
const (
	MaxNameLength        = 100
	MaxEmailLength       = 320 // RFC 5321
	MinPhoneDigits       = 8
	MaxPhoneDigits       = 15 // E.164
	OTPLength            = 4
	MaxNoteLength        = 2000
	MaxReviewLength      = 1000
	MaxTicketSubject     = 150
	MaxTicketDescription = 5000
	MaxRatingImages      = 5
	MaxURLLength         = 2048
)

// Required rejects blank values.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// MaxLength rejects values longer than limit characters.
func MaxLength(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("%s exceeds maximum length of %d characters (got %d)", field, limit, n)
	}
	return nil
}

// NormalizePhone strips spaces, dashes and parentheses.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

// ValidatePhone checks a local phone number: digits only after
// normalization, between MinPhoneDigits and MaxPhoneDigits long.
func ValidatePhone(phone string) error {
	phone = NormalizePhone(phone)
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid phone format: contains invalid character '%c'", r)
		}
	}
	if len(phone) < MinPhoneDigits || len(phone) > MaxPhoneDigits {
		return fmt.Errorf("phone number must have %d to %d digits (got %d)", MinPhoneDigits, MaxPhoneDigits, len(phone))
	}
	return nil
}

// ValidateCountryCode accepts "+966" or "966".
func ValidateCountryCode(code string) error {
	code = strings.TrimPrefix(strings.TrimSpace(code), "+")
	if code == "" {
		return fmt.Errorf("country code is required")
	}
	if len(code) > 4 {
		return fmt.Errorf("invalid country code %q", code)
	}
	if _, err := strconv.Atoi(code); err != nil {
		return fmt.Errorf("invalid country code %q", code)
	}
	return nil
}

// ValidateOTP checks a one-time password.
func ValidateOTP(otp string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return fmt.Errorf("verification code is required")
	}
	if len(otp) != OTPLength {
		return fmt.Errorf("verification code must be %d digits", OTPLength)
	}
	for _, r := range otp {
		if r < '0' || r > '9' {
			return fmt.Errorf("verification code must be %d digits", OTPLength)
		}
	}
	return nil
}

// ValidateName checks an optional display name.
func ValidateName(name string) error {
	return MaxLength("name", name, MaxNameLength)
}

// ValidateEmail checks an optional email address.
// Returns nil for empty emails.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if err := MaxLength("email", email, MaxEmailLength); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format: %q", email)
	}
	return nil
}

// ValidateNote checks note text.
func ValidateNote(text string) error {
	if err := Required("note", text); err != nil {
		return err
	}
	return MaxLength("note", text, MaxNoteLength)
}

// ValidateRating checks a star rating and its optional review.
func ValidateRating(rating int, review string, images int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5 (got %d)", rating)
	}
	if err := MaxLength("review", review, MaxReviewLength); err != nil {
		return err
	}
	if images > MaxRatingImages {
		return fmt.Errorf("at most %d images can be attached (got %d)", MaxRatingImages, images)
	}
	return nil
}

// ValidateTicket checks a support ticket.
func ValidateTicket(subject, description string) error {
	if err := Required("subject", subject); err != nil {
		return err
	}
	if err := MaxLength("subject", subject, MaxTicketSubject); err != nil {
		return err
	}
	if err := Required("description", description); err != nil {
		return err
	}
	return MaxLength("description", description, MaxTicketDescription)
}

// ValidatePriceRange checks optional price bounds. Zero means unbounded.
func ValidatePriceRange(minPrice, maxPrice float64) error {
	if minPrice < 0 || maxPrice < 0 {
		return fmt.Errorf("prices cannot be negative")
	}
	if maxPrice > 0 && minPrice > maxPrice {
		return fmt.Errorf("min price %g is greater than max price %g", minPrice, maxPrice)
	}
	return nil
}

// ParsePositiveInt parses a string as a positive integer ID.
// Returns error if the value is not a positive integer or exceeds int32 range.
func ParsePositiveInt(s string, fieldName string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	id64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if id64 <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", fieldName)
	}
	return int(id64), nil
}
