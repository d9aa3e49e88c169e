package secrets

import (
	"encoding/json"
	"fmt"
	"os"
)

// Credentials is the posting backend login. Values are never logged and never
// written back to disk by this process.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Provider resolves Bluesky credentials from a JSON file or from statically
// configured values. The file wins when both are set, and is re-read on each
// Get so a rotated secret is picked up without a restart.
type Provider struct {
	file     string
	username string
	password string
}

func NewProvider(file, username, password string) *Provider {
	return &Provider{
		file:     file,
		username: username,
		password: password,
	}
}

func (p *Provider) Get() (Credentials, error) {
	if p.file != "" {
		return p.fromFile()
	}

	creds := Credentials{Username: p.username, Password: p.password}
	if err := creds.validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (p *Provider) fromFile() (Credentials, error) {
	data, err := os.ReadFile(p.file)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if err := creds.validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (c Credentials) validate() error {
	if c.Username == "" {
		return fmt.Errorf("username not found in credentials")
	}
	if c.Password == "" {
		return fmt.Errorf("password not found in credentials")
	}
	return nil
}
