package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema checks that every section and field of the config is known to the embedded
// JSON schema, i.e. the schema was regenerated after the Config struct changed
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema struct {
		Defs map[string]struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"$defs"`
	}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]json.RawMessage
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	sections := map[string]string{"server": "ServerConfig", "store": "StoreConfig", "admin": "AdminConfig", "nonce": "NonceConfig"}
	if err := checkKeys(configMap, schema.Defs["Config"].Properties, "config"); err != nil {
		return err
	}
	for section, def := range sections {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(configMap[section], &fields); err != nil {
			return fmt.Errorf("unmarshal %s: %w", section, err)
		}
		if err := checkKeys(fields, schema.Defs[def].Properties, section); err != nil {
			return err
		}
	}

	return validateRequiredFields(cfg)
}

// checkKeys makes sure all keys of the values map present in schema properties
func checkKeys(values, props map[string]json.RawMessage, section string) error {
	var unknown []string
	for k := range values {
		if _, ok := props[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s fields missing in schema: %v", section, unknown)
	}
	return nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}
	if cfg.Nonce.Secret == "" {
		return fmt.Errorf("nonce.secret is required")
	}
	if len(cfg.Users) == 0 {
		return fmt.Errorf("at least one user is required")
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
