package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret may come from. Lookup order is File, Env, Value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// Env names an environment variable holding the secret.
	Env string
	// File points to a file containing the secret value.
	File string
}

// Load returns the trimmed secret from the first non-empty source.
// An unreadable file is an error; an empty file falls through to the next source.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	var tried []string

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return secret, nil
		}
		tried = append(tried, fmt.Sprintf("file %q is empty", file))
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
		tried = append(tried, fmt.Sprintf("env %s is unset", env))
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if len(tried) > 0 {
		return "", fmt.Errorf("%s is not configured: %s", name, strings.Join(tried, ", "))
	}

	return "", fmt.Errorf("%s is not configured", name)
}
