// Package config provides workload source configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sunxiaoguang/serverless-cost-calculator/internal/errors"
)

// Source describes a MySQL-compatible database to sample statistics from.
type Source struct {
	// Host is the server hostname or address
	Host string `json:"host" yaml:"host"`

	// Port is the server port
	Port uint16 `json:"port" yaml:"port"`

	// User is the username used to connect
	User string `json:"user" yaml:"user"`

	// Password is the password used to connect
	Password string `json:"password" yaml:"password"`

	// Database is the schema whose workload is estimated
	Database string `json:"database" yaml:"database"`
}

// Default connection values match the stock MySQL client.
const (
	DefaultHost = "localhost"
	DefaultPort = 3306
	DefaultUser = "root"
)

// ApplyDefaults fills in zero-valued connection fields.
func (s *Source) ApplyDefaults() {
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.User == "" {
		s.User = DefaultUser
	}
}

// LoadBatch reads a list of workload sources from a JSON or YAML file,
// selected by file extension.
func LoadBatch(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("failed to read batch configuration", err)
	}

	var sources []Source
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &sources); err != nil {
			return nil, errors.Config("failed to parse batch configuration", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &sources); err != nil {
			return nil, errors.Config("failed to parse batch configuration", err)
		}
	default:
		return nil, errors.New(errors.TypeUnsupported,
			"unknown batch configuration file format, only json and yaml are supported")
	}

	for i := range sources {
		sources[i].ApplyDefaults()
	}
	return sources, nil
}
