package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExpirationChoice is one entry of the named expiration table offered on upload.
type ExpirationChoice struct {
	Name     string        `yaml:"name"`
	Duration time.Duration `yaml:"duration"`
}

type UploadPolicy struct {
	MaxSize            int64              `yaml:"max_size"`
	FilesPerUser       int                `yaml:"files_per_user"`
	PublicFilesPerPage int                `yaml:"public_files_per_page"`
	DescriptionMax     int                `yaml:"description_max"`
	VerboseUniqueNames bool               `yaml:"verbose_unique_names"`
	AllowedExtensions  []string           `yaml:"allowed_extensions"`
	Visibilities       []string           `yaml:"visibilities"`
	Expirations        []ExpirationChoice `yaml:"expirations"`
}

type PostPolicy struct {
	PerPage int
	MaxLen  int
}

type RegistrationPolicy struct {
	UsernameMin  int
	UsernameMax  int
	NameMin      int
	NameMax      int
	PasswordMin  int
	PasswordMax  int
	BioMax       int
	Genders      []string
	Months       []string // index 0 is January
	BirthYearMin int
	BirthYearMax int
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxSize:            16 * 1000 * 1000,
		FilesPerUser:       10,
		PublicFilesPerPage: 8,
		DescriptionMax:     140,
		AllowedExtensions: []string{
			"doc", "docx", "xls",
			"xlsx", "ppt", "pptx",
			"pdf", "png", "jpg",
			"jpeg", "bmp", "gif",
			"webm", "zip", "rar",
		},
		Visibilities: []string{"Public", "Private", "By link"},
		Expirations: []ExpirationChoice{
			{Name: "1 hour", Duration: time.Hour},
			{Name: "12 hours", Duration: 12 * time.Hour},
			{Name: "1 day", Duration: 24 * time.Hour},
			{Name: "1 week", Duration: 7 * 24 * time.Hour},
			{Name: "1 month", Duration: 4 * 7 * 24 * time.Hour},
			{Name: "1 year", Duration: 365 * 24 * time.Hour},
		},
	}
}

func DefaultPostPolicy() PostPolicy {
	return PostPolicy{
		PerPage: 8,
		MaxLen:  280,
	}
}

func DefaultRegistrationPolicy() RegistrationPolicy {
	return RegistrationPolicy{
		UsernameMin: 4,
		UsernameMax: 20,
		NameMin:     2,
		NameMax:     20,
		PasswordMin: 8,
		PasswordMax: 20,
		BioMax:      280,
		Genders:     []string{"Male", "Female"},
		Months: []string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		BirthYearMin: 1902,
		BirthYearMax: 2009,
	}
}

// LoadUploadPolicy reads a YAML upload policy. Fields left out keep their defaults.
func LoadUploadPolicy(path string) (*UploadPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	policy := DefaultUploadPolicy()
	err = yaml.Unmarshal(data, &policy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse upload policy: %w", err)
	}

	err = policy.Validate()
	if err != nil {
		return nil, err
	}

	return &policy, nil
}

func (p *UploadPolicy) Validate() error {
	if p.MaxSize <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	if p.FilesPerUser <= 0 {
		return fmt.Errorf("files_per_user must be positive")
	}
	if p.PublicFilesPerPage <= 0 {
		return fmt.Errorf("public_files_per_page must be positive")
	}
	if len(p.Expirations) == 0 {
		return fmt.Errorf("at least one expiration choice is required")
	}
	for _, e := range p.Expirations {
		if e.Name == "" || e.Duration <= 0 {
			return fmt.Errorf("invalid expiration choice %q", e.Name)
		}
	}
	if len(p.Visibilities) == 0 {
		return fmt.Errorf("at least one visibility is required")
	}
	return nil
}

// ExpirationFor looks up a named duration from the expiration table.
func (p *UploadPolicy) ExpirationFor(name string) (time.Duration, bool) {
	for _, e := range p.Expirations {
		if e.Name == name {
			return e.Duration, true
		}
	}
	return 0, false
}

func (p *UploadPolicy) AllowsExtension(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, allowed := range p.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (p *UploadPolicy) AllowsVisibility(v string) bool {
	for _, allowed := range p.Visibilities {
		if allowed == v {
			return true
		}
	}
	return false
}
