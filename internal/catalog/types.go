package catalog

// Service is one report category.
type Service struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

// catalogFile is the YAML layout of config/services.yaml
type catalogFile struct {
	Services []Service `yaml:"services"`
}
