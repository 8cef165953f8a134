package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		user string
		pass string
		want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/admin?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/admin?parseTime=true",
		},
		{
			name: "jdbc url with overrides",
			in:   "jdbc:mysql://db:3306/admin?useSSL=false&serverTimezone=UTC",
			user: "app",
			pass: "secret",
			want: "app:secret@tcp(db:3306)/admin?charset=utf8mb4&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "mysql url credentials",
			in:   "mysql://u:p@localhost:3306/dash?characterEncoding=utf8",
			want: "u:p@tcp(localhost:3306)/dash?charset=utf8&parseTime=true",
		},
		{
			name: "query credentials and tls",
			in:   "mysql://db/app?user=q&password=w&useSSL=TRUE&charset=latin1&useUnicode=true",
			want: "q:w@tcp(db)/app?charset=latin1&parseTime=true&tls=true",
		},
		{
			name: "empty",
			in:   "  ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "app:****@tcp(db:3306)/admin", MaskDSN("app:secret@tcp(db:3306)/admin"))
	assert.Equal(t, "tcp(db:3306)/admin", MaskDSN("tcp(db:3306)/admin"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
