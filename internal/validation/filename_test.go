package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{`..\windows\system32.dll`, "windows_system32.dll"},
		{"i contain cool \xfcml\xe4uts.txt", "i_contain_cool_mluts.txt"},
		{"über résumé.pdf", "uber_resume.pdf"},
		{"отчёт за май.docx", "отчет_за_маи.docx"},
		{"  spaced\t\tout  .zip", "spaced_out_.zip"},
		{"CON.txt", "_CON.txt"},
		{"lpt1", "_lpt1"},
		{"console.txt", "console.txt"},
		{"...", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}
