package logger

import (
	"os"
	"runtime"
)

// ServiceName is attached to every log entry as the "service" field
const ServiceName = "go-sse-broadcast"

type Config struct {
	Level      Level             `json:"level"       yaml:"level"`
	Format     string            `json:"format"      yaml:"format"` // console, text, json
	Output     string            `json:"output"      yaml:"output"` // stdout, stderr, file, discard
	FilePath   string            `json:"file_path"   yaml:"file_path"`
	MaxSize    int               `json:"max_size"    yaml:"max_size"` // MB
	MaxBackups int               `json:"max_backups" yaml:"max_backups"`
	MaxAge     int               `json:"max_age"     yaml:"max_age"` // days
	Compress   bool              `json:"compress"    yaml:"compress"`
	Fields     map[string]string `json:"fields"      yaml:"fields"` // static fields added to every entry
}

// envFields maps deployment environment variables to log fields. Unset
// variables are skipped.
var envFields = []struct {
	env   string
	field string
}{
	{"KUBERNETES_NAMESPACE", "k8s_namespace"},
	{"KUBERNETES_POD_NAME", "k8s_pod"},
	{"KUBERNETES_NODE_NAME", "k8s_node"},
	{"HOSTNAME", "container_id"},
	{"APP_VERSION", "app_version"},
	{"APP_ENV", "environment"},
}

// GetDefaultFields returns the process metadata attached to every entry
func GetDefaultFields() Fields {
	hostname, _ := os.Hostname()

	fields := Fields{
		"service":    ServiceName,
		"hostname":   hostname,
		"pid":        os.Getpid(),
		"go_version": runtime.Version(),
	}

	for _, f := range envFields {
		if v := os.Getenv(f.env); v != "" {
			fields[f.field] = v
		}
	}

	return fields
}

func NewDefaultConfig() *Config {
	config := &Config{
		Level:      LevelInfo,
		Format:     "console",
		Output:     "stdout",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
		Fields:     make(map[string]string),
	}

	// Only string-valued fields fit the static field map
	for k, v := range GetDefaultFields() {
		if str, ok := v.(string); ok {
			config.Fields[k] = str
		}
	}

	return config
}
