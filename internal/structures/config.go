package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath   string `yaml:"filePath" validate:"required|unixPath"`
	BackupPath string `yaml:"backupPath" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type RemindersConfig struct {
	Enabled             bool          `yaml:"enabled"`
	FireHour            int           `yaml:"fireHour" validate:"max:23"`
	RucLeadDays         int           `yaml:"rucLeadDays" validate:"required|min:1"`
	DateLeadDays        int           `yaml:"dateLeadDays" validate:"required|min:1"`
	StaleShortDays      int           `yaml:"staleShortDays" validate:"required|min:1"`
	StaleLongDays       int           `yaml:"staleLongDays" validate:"required|min:1"`
	StaleShortThreshold int           `yaml:"staleShortThreshold" validate:"required|min:1"`
	SweepInterval       time.Duration `yaml:"sweepInterval" validate:"required|min:1"`
	DedupFilePath       string        `yaml:"dedupFilePath" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Reminders   RemindersConfig `yaml:"reminders"`
	Logger      LoggerConfig    `yaml:"logger"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
