package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// Credentials is either a service-account JSON bundle or a path to one.
type Credentials struct {
	JSON string
	File string
}

// Configured reports whether a credential bundle or a credentials-file path is present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.JSON) != "" || strings.TrimSpace(c.File) != ""
}

// ClientOptions prefers the inline bundle. A File value that looks like JSON is
// treated as a bundle.
func (c Credentials) ClientOptions() []option.ClientOption {
	creds := strings.TrimSpace(c.JSON)
	if creds == "" {
		creds = strings.TrimSpace(c.File)
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
