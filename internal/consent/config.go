// internal/consent/config.go
package consent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Permissions is the desired grant set for the service application,
// loaded once per batch. A missing or empty file is setup-fatal: without it
// no tenant can be processed meaningfully.
type Permissions struct {
	ApplicationID string  `yaml:"applicationId"`
	DisplayName   string  `yaml:"displayName"`
	Grants        []Grant `yaml:"grants"`
}

func (p Permissions) Validate() error {
	if p.ApplicationID == "" {
		return fmt.Errorf("consent: permissions: missing applicationId")
	}
	if len(p.Grants) == 0 {
		return fmt.Errorf("consent: permissions: no grants configured")
	}
	return nil
}

func LoadPermissions(path string) (Permissions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Permissions{}, fmt.Errorf("consent: read permissions %s: %w", path, err)
	}
	var p Permissions
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Permissions{}, fmt.Errorf("consent: parse permissions %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Permissions{}, err
	}
	return p, nil
}
