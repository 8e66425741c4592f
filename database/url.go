package database

import (
	"fmt"
	"net/url"
	"strings"
)

// ConstructDatabaseURL points a server URL at databaseName.
// sslmode=disable is added when the URL does not choose a mode itself.
func ConstructDatabaseURL(baseURL, databaseName string) (string, error) {
	if databaseName == "" {
		return baseURL, nil
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	u.Path = "/" + databaseName

	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}
