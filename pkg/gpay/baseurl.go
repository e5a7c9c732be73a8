package gpay

import (
	"strings"

	"github.com/pkg/errors"
)

// BaseURL is one of the GPay API deployments
type BaseURL string

const (
	Staging    BaseURL = "https://gpay-staging.libyaguide.net/banking/api/onlinewallet/v1"
	Production BaseURL = "https://gpay.ly/banking/api/onlinewallet/v1"
	Dev        BaseURL = "http://localhost:8080/banking/api/onlinewallet/v1"
)

// APIPrefix is the path every deployment serves the API under
const APIPrefix = "/banking/api/onlinewallet/v1"

// Valid reports whether u is one of the known deployments
func (u BaseURL) Valid() bool {
	switch u {
	case Staging, Production, Dev:
		return true
	}
	return false
}

func (u BaseURL) String() string { return string(u) }

// ParseEnvironment maps an environment name to its BaseURL
func ParseEnvironment(name string) (BaseURL, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "staging":
		return Staging, nil
	case "production", "prod":
		return Production, nil
	case "dev", "local":
		return Dev, nil
	}
	return "", errors.Wrapf(ErrInvalidBaseURL, "unknown environment %q", name)
}
