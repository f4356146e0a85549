//go:build prod

package config

func IsDevelopment() bool {
	return false
}
