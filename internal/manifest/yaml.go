package manifest

import yaml "github.com/goccy/go-yaml"

func yamlUnmarshal(b []byte, v interface{}) error {
	return yaml.Unmarshal(b, v)
}

func yamlUnmarshalScalar(b []byte, v *string) error {
	return yaml.Unmarshal(b, v)
}
