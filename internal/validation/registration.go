package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dropwall/dropwall/internal/config"
)

// reservedUsernames are names that collide with routes or look official.
var reservedUsernames = map[string]bool{
	"admin": true, "administrator": true, "root": true, "system": true,
	"support": true, "help": true, "moderator": true, "staff": true,
	"auth": true, "login": true, "logout": true, "register": true,
	"files": true, "posts": true, "users": true, "public": true,
	"static": true, "assets": true, "api": true, "healthz": true,
	"null": true, "undefined": true, "anonymous": true, "guest": true,
}

const passwordSpecials = "$@#%_"

// Registration is the raw sign-up form.
type Registration struct {
	FirstName      string
	LastName       string
	Gender         string
	BirthDay       string
	BirthMonth     string
	BirthYear      string
	Username       string
	Password       string
	RepeatPassword string
	Bio            string
}

// ValidateRegistration checks every field and returns the parsed birthdate.
// The returned error is nil or *Errors.
func ValidateRegistration(in Registration, p config.RegistrationPolicy) (time.Time, error) {
	errs := NewErrors()

	errs.Check("first_name", ValidatePersonName(in.FirstName, p))
	errs.Check("last_name", ValidatePersonName(in.LastName, p))
	errs.Check("gender", ValidateGender(in.Gender, p))
	errs.Check("username", ValidateUsername(in.Username, p))
	errs.Check("password", ValidatePassword(in.Password, p))
	if in.RepeatPassword == "" || in.RepeatPassword != in.Password {
		errs.Add("repeat_password", "passwords do not match")
	}
	errs.Check("bio", ValidateLength(in.Bio, p.BioMax))

	birthdate, err := ParseBirthdate(in.BirthDay, in.BirthMonth, in.BirthYear, p)
	if err != nil {
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) {
			errs.Add(fieldErr.Field, fieldErr.Message)
		} else {
			errs.Add("birthdate_day", err.Error())
		}
	}

	return birthdate, errs.Err()
}

// FieldError points a single message at a specific form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func ValidatePersonName(name string, p config.RegistrationPolicy) error {
	n := utf8.RuneCountInString(name)
	if n < p.NameMin || n > p.NameMax {
		return fmt.Errorf("must be %d to %d letters", p.NameMin, p.NameMax)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return errors.New("must contain letters only")
		}
	}
	return nil
}

func ValidateGender(gender string, p config.RegistrationPolicy) error {
	for _, g := range p.Genders {
		if g == gender {
			return nil
		}
	}
	return errors.New("choose gender from the list")
}

// ValidateUsername allows ASCII letters and digits joined by single
// '_', '.' or '-' separators. Reserved names are refused.
func ValidateUsername(username string, p config.RegistrationPolicy) error {
	if len(username) < p.UsernameMin || len(username) > p.UsernameMax {
		return fmt.Errorf("must be %d to %d characters", p.UsernameMin, p.UsernameMax)
	}

	prevSep := true // a leading separator is rejected
	for i := 0; i < len(username); i++ {
		c := username[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			prevSep = false
		case c == '_' || c == '.' || c == '-':
			if prevSep {
				return errors.New("separators must sit between letters or digits")
			}
			prevSep = true
		default:
			return errors.New("only letters, digits, '_', '.' and '-' are allowed")
		}
	}
	if prevSep {
		return errors.New("separators must sit between letters or digits")
	}

	if reservedUsernames[strings.ToLower(username)] {
		return errors.New("this username is reserved")
	}
	return nil
}

func ValidatePassword(password string, p config.RegistrationPolicy) error {
	n := utf8.RuneCountInString(password)
	if n < p.PasswordMin || n > p.PasswordMax {
		return fmt.Errorf("must be %d to %d characters", p.PasswordMin, p.PasswordMax)
	}

	var digit, upper, lower, special bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return errors.New("must not contain spaces")
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			special = true
		}
	}

	if !digit || !upper || !lower || !special {
		return fmt.Errorf("needs a digit, an upper and a lower case letter and one of %s", passwordSpecials)
	}
	return nil
}

// ValidateLength caps free text at max runes.
func ValidateLength(s string, max int) error {
	if utf8.RuneCountInString(s) > max {
		return fmt.Errorf("must be at most %d characters", max)
	}
	return nil
}

// ParseBirthdate resolves a month by its configured name and rejects dates
// that do not exist on the calendar (e.g. 30 February).
func ParseBirthdate(day, month, year string, p config.RegistrationPolicy) (time.Time, error) {
	m := 0
	for i, name := range p.Months {
		if name == month {
			m = i + 1
			break
		}
	}
	if m == 0 {
		return time.Time{}, &FieldError{Field: "birthdate_month", Message: "choose month from the list"}
	}

	y, err := strconv.Atoi(year)
	if err != nil || y < p.BirthYearMin || y > p.BirthYearMax {
		return time.Time{}, &FieldError{Field: "birthdate_year", Message: fmt.Sprintf("must be between %d and %d", p.BirthYearMin, p.BirthYearMax)}
	}

	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, &FieldError{Field: "birthdate_day", Message: "must be between 1 and 31"}
	}

	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if date.Day() != d {
		return time.Time{}, &FieldError{Field: "birthdate_day", Message: "no such date"}
	}
	return date, nil
}
