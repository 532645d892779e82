package h

import (
	"net/url"
	"strings"
)

type Url struct {
	Scheme   string
	Path     string
	Url      string
	Host     string
	Port     string
	User     string
	Password string
	query    map[string]any
}

func ParseUrl(input string) (Url, error) {
	queryParams := make(map[string]any)
	u, err := url.Parse(input)
	if err != nil {
		return Url{}, err
	}
	for key, values := range u.Query() {
		if len(values) > 0 {
			queryParams[key] = values[0] // Take first value if multiple
		}
	}
	password, ok := u.User.Password()
	if !ok {
		password = ""
	}
	return Url{
		Scheme:   u.Scheme,
		Path:     u.Path,
		Url:      input,
		Host:     u.Hostname(),
		Port:     u.Port(),
		User:     u.User.Username(),
		Password: password,
		query:    queryParams,
	}, nil
}

func (u Url) HasQueryParam(key string) bool {
	_, ok := u.query[key]
	return ok
}

func (u Url) Query(key string) any {
	return u.query[key]
}

// Database returns the path component without the leading slash, which is the
// database name for postgres:// urls.
func (u Url) Database() string {
	return strings.TrimPrefix(u.Path, "/")
}

