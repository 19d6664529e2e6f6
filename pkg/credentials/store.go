package credentials

import (
	"encoding/json"
	"fmt"
	"os"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// LoadStore reads an external secrets file mapping account ids to secrets.
// The file is parsed as YAML, which also accepts the JSON form the original
// secrets templates use. An empty path returns an empty store.
func LoadStore(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file: %w", err)
	}

	// Account ids contain dots, so the default "." delimiter would split
	// them into nested paths.
	k := koanf.New("::")
	if err := k.Load(rawbytes.Provider(data), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("parse secrets file: %w", err)
	}

	store := make(map[string]string)
	for key := range k.All() {
		store[key] = k.String(key)
	}
	return store, nil
}

// WriteStoreTemplate writes a secrets file skeleton with one placeholder
// entry per distinct account id, in first-seen order.
func WriteStoreTemplate(path string, accountIDs []string) error {
	template := make(map[string]string, len(accountIDs))
	for _, id := range accountIDs {
		template[id] = "YOUR_PASSWORD_HERE"
	}

	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write secrets template: %w", err)
	}
	return nil
}
