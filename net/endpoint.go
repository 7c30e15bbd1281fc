package net

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is the port the redis compatible stores listen on.
const DefaultPort = 6379

// Endpoint holds the connection parameters of a key-value store.
type Endpoint struct {
	Host string
	Port int

	// TLS is set by the rediss:// and valkeys:// schemes
	TLS bool

	// Username and Password from the userinfo of the URI
	Username string
	Password string

	// Database from the path of the URI, e.g. redis://host:6379/2
	Database int
}

// Address returns host:port, ready to be dialed.
func (ep Endpoint) Address() string {
	return net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
}

// URI returns the redis:// or rediss:// URI of the endpoint, including
// the credentials and the database.
func (ep Endpoint) URI() string {
	u := &url.URL{Scheme: "redis", Host: ep.Address()}
	if ep.TLS {
		u.Scheme = "rediss"
	}

	switch {
	case ep.Password != "":
		u.User = url.UserPassword(ep.Username, ep.Password)
	case ep.Username != "":
		u.User = url.User(ep.Username)
	}

	if ep.Database != 0 {
		u.Path = "/" + strconv.Itoa(ep.Database)
	}

	return u.String()
}

// String returns the address, it never contains the credentials.
func (ep Endpoint) String() string {
	return ep.Address()
}

// TLSConfig returns the client TLS configuration for the endpoint, or
// nil when it does not use TLS.
func (ep Endpoint) TLSConfig() *tls.Config {
	if !ep.TLS {
		return nil
	}

	return &tls.Config{
		ServerName: ep.Host,
		MinVersion: tls.VersionTLS12,
	}
}

// ParseEndpoint accepts redis://, rediss://, valkey:// and valkeys://
// URIs, or a bare host:port. The port defaults to DefaultPort when it is
// missing from a URI. Credentials are taken from the userinfo and the
// database from the path of a URI.
func ParseEndpoint(s string) (Endpoint, error) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return parseHostPort(s)
	}

	var ep Endpoint
	switch u.Scheme {
	case "redis", "valkey":
	case "rediss", "valkeys":
		ep.TLS = true
	default:
		return Endpoint{}, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, u.Redacted())
	}

	if u.Port() == "" {
		ep.Host, ep.Port = u.Hostname(), DefaultPort
	} else {
		hp, err := parseHostPort(u.Host)
		if err != nil {
			return Endpoint{}, err
		}
		ep.Host, ep.Port = hp.Host, hp.Port
	}

	if u.User != nil {
		ep.Username = u.User.Username()
		ep.Password, _ = u.User.Password()
	}

	if db := strings.Trim(u.Path, "/"); db != "" {
		ep.Database, err = strconv.Atoi(db)
		if err != nil || ep.Database < 0 {
			return Endpoint{}, fmt.Errorf("invalid database %q in %q", db, u.Redacted())
		}
	}

	return ep, nil
}

func parseHostPort(s string) (Endpoint, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", s, err)
	}

	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return Endpoint{}, fmt.Errorf("invalid port in endpoint %q", s)
	}

	return Endpoint{Host: host, Port: p}, nil
}

// Redact masks the password of a URI, for logging. Other strings are
// returned unchanged.
func Redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	return u.Redacted()
}
