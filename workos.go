package authkit

import (
	"github.com/dmitrymomot/authkit/pkg/workos"
)

const (
	// AppName and Version are reported in the User-Agent of API requests.
	AppName = "authkit-go"
	Version = "0.1.0"
)

// NewWorkOS builds an API client from the resolved configuration.
// It requires apiKey; hostname, scheme and port come from apiHostname,
// apiHttps and apiPort.
func NewWorkOS(src ConfigSource) (*workos.Client, error) {
	cfg, err := ResolveConfiguration(src)
	if err != nil {
		return nil, err
	}

	apiKey, err := cfg.String(KeyAPIKey)
	if err != nil {
		return nil, err
	}
	hostname, err := cfg.String(KeyAPIHostname)
	if err != nil {
		return nil, err
	}
	https, err := cfg.Bool(KeyAPIHTTPS)
	if err != nil {
		return nil, err
	}
	port, err := cfg.Int(KeyAPIPort)
	if err != nil {
		return nil, err
	}

	return workos.New(apiKey, workos.Options{
		APIHostname: hostname,
		HTTPS:       https,
		Port:        port,
		AppInfo:     workos.AppInfo{Name: AppName, Version: Version},
	})
}

// GetWorkOS is an alias of NewWorkOS. Every call returns a new client.
func GetWorkOS(src ConfigSource) (*workos.Client, error) {
	return NewWorkOS(src)
}
