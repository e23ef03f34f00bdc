package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"bidwatch/internal/notice"
)

// LoadUsers reads the recipients file (JSON or YAML, same keys either way).
// Unknown fields are rejected like the main config.
func LoadUsers(path string) ([]notice.User, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, fmt.Errorf("users %s: %w", path, err)
	}

	var users []notice.User
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&users); err != nil {
		return nil, fmt.Errorf("users %s: %w", path, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("users %s: trailing data", path)
		}
		return nil, err
	}

	for i, u := range users {
		if strings.TrimSpace(u.Name) == "" {
			return nil, fmt.Errorf("users %s: entry %d has no name", path, i)
		}
		if strings.TrimSpace(u.Phone) == "" {
			return nil, fmt.Errorf("users %s: %q has no phone", path, u.Name)
		}
		for j := range u.Conditions {
			cat, err := notice.ParseCategory(string(u.Conditions[j].Category))
			if err != nil {
				return nil, fmt.Errorf("users %s: %q condition %d: %w", path, u.Name, j, err)
			}
			users[i].Conditions[j].Category = cat
		}
	}
	return users, nil
}

// UsersFile is an engine.UserSource that re-reads the file on every run, so
// recipient edits take effect without restarting the daemon.
type UsersFile struct {
	Path string
}

func (u UsersFile) Users(ctx context.Context) ([]notice.User, error) {
	_ = ctx
	return LoadUsers(u.Path)
}
