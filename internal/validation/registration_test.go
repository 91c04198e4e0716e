package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{
		FirstName:      "Anna",
		LastName:       "Иванова",
		Gender:         "Female",
		BirthDay:       "29",
		BirthMonth:     "February",
		BirthYear:      "2000",
		Username:       "anna.k",
		Password:       "Secret_12",
		RepeatPassword: "Secret_12",
		Bio:            "hello",
	}
}

func TestValidateRegistration(t *testing.T) {
	p := config.DefaultRegistrationPolicy()

	birthdate, err := ValidateRegistration(validRegistration(), p)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC), birthdate)
}

func TestValidateRegistrationCollectsFieldErrors(t *testing.T) {
	p := config.DefaultRegistrationPolicy()

	in := validRegistration()
	in.FirstName = "A"
	in.Gender = "Other"
	in.RepeatPassword = "different"
	in.Bio = strings.Repeat("x", 281)
	in.BirthYear = "2001" // 29 February does not exist in 2001

	_, err := ValidateRegistration(in, p)
	require.Error(t, err)

	var verr *Errors
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Get("first_name"))
	assert.NotEmpty(t, verr.Get("gender"))
	assert.NotEmpty(t, verr.Get("repeat_password"))
	assert.NotEmpty(t, verr.Get("bio"))
	assert.NotEmpty(t, verr.Get("birthdate_day"))
	assert.Empty(t, verr.Get("username"))
	assert.Empty(t, verr.Get("last_name"))
}

func TestValidateUsername(t *testing.T) {
	p := config.DefaultRegistrationPolicy()

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"simple", "alice", true},
		{"separators", "a.b-c_d", true},
		{"digits", "user2024", true},
		{"too short", "abc", false},
		{"too long", strings.Repeat("a", 21), false},
		{"leading separator", "_alice", false},
		{"trailing separator", "alice.", false},
		{"double separator", "al..ice", false},
		{"space", "al ice", false},
		{"non ascii", "алиса", false},
		{"reserved", "Admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input, p)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	p := config.DefaultRegistrationPolicy()

	assert.NoError(t, ValidatePassword("Abcdef1$", p))
	assert.NoError(t, ValidatePassword("Abcdefghijklmnopq1_x", p))

	assert.Error(t, ValidatePassword("Abc1$", p), "too short")
	assert.Error(t, ValidatePassword("Abcdefghijklmnopq1_xy", p), "too long")
	assert.Error(t, ValidatePassword("Abcd ef1$", p), "space")
	assert.Error(t, ValidatePassword("abcdefg1$", p), "no upper")
	assert.Error(t, ValidatePassword("ABCDEFG1$", p), "no lower")
	assert.Error(t, ValidatePassword("Abcdefgh$", p), "no digit")
	assert.Error(t, ValidatePassword("Abcdefgh1", p), "no special")
}

func TestParseBirthdate(t *testing.T) {
	p := config.DefaultRegistrationPolicy()

	d, err := ParseBirthdate("5", "May", "1990", p)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, time.May, 5, 0, 0, 0, 0, time.UTC), d)

	var fieldErr *FieldError

	_, err = ParseBirthdate("5", "Mayday", "1990", p)
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "birthdate_month", fieldErr.Field)

	_, err = ParseBirthdate("5", "May", "1901", p)
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "birthdate_year", fieldErr.Field)

	_, err = ParseBirthdate("31", "April", "1990", p)
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "birthdate_day", fieldErr.Field)
}

func TestValidatePersonName(t *testing.T) {
	p := config.DefaultRegistrationPolicy()

	assert.NoError(t, ValidatePersonName("Jo", p))
	assert.NoError(t, ValidatePersonName("Ёжик", p))
	assert.Error(t, ValidatePersonName("J", p))
	assert.Error(t, ValidatePersonName("Jo3", p))
	assert.Error(t, ValidatePersonName("Mary Ann", p))
}
