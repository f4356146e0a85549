//go:build !prod

package config

// IsDevelopment reports whether this is a development build. Development
// builds log in the human-readable zap format.
func IsDevelopment() bool {
	return true
}
