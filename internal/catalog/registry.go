package catalog

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry is the read-only set of report service categories.
// It is loaded once at startup and safe for concurrent use.
type Registry struct {
	services []Service
	byKey    map[string]Service
}

// NewRegistry loads the embedded service catalog
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/services.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read service catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from catalog YAML. Codes and names must be unique.
func Parse(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service catalog: %w", err)
	}
	if len(file.Services) == 0 {
		return nil, fmt.Errorf("service catalog is empty")
	}

	r := &Registry{byKey: make(map[string]Service, len(file.Services)*2)}
	for _, svc := range file.Services {
		if svc.Code == "" || svc.Name == "" {
			return nil, fmt.Errorf("service entry needs both code and name: %+v", svc)
		}
		for _, key := range []string{normalize(svc.Code), normalize(svc.Name)} {
			if existing, ok := r.byKey[key]; ok && existing != svc {
				return nil, fmt.Errorf("duplicate service %q", key)
			}
			r.byKey[key] = svc
		}
		r.services = append(r.services, svc)
	}
	return r, nil
}

// List returns every service in catalog order
func (r *Registry) List() []Service {
	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out
}

// Lookup finds a service by code or display name, ignoring case
func (r *Registry) Lookup(codeOrName string) (Service, bool) {
	svc, ok := r.byKey[normalize(codeOrName)]
	return svc, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
