package util

import (
	"log"
	"os"

	"github.com/go-yaml/yaml"
)

// Config is the chat server base configuration
type Config struct {
	Server Server `yaml:"server"`
	Chat   Chat   `yaml:"chat"`
}

type Server struct {
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	UploadDir     string `yaml:"uploadDir"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	LogPath       string `yaml:"logPath"`
}

// Chat holds the process-wide rate defaults used when a stream
// has no enabled priority policy.
type Chat struct {
	DefaultMsgRateRps  int   `yaml:"defaultMsgRateRps"`
	DefaultUploadBps   int64 `yaml:"defaultUploadBps"`
	DefaultDownloadBps int64 `yaml:"defaultDownloadBps"`
	DefaultBurst       int   `yaml:"defaultBurst"`
	DevMode            bool  `yaml:"devMode"`
}

// Load loads chat config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("failed to open configuration file:", err)
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		log.Fatal("failed to load configuration file:", err)
		return err
	}

	c.applyDefaults()

	return nil
}

func (c *Config) applyDefaults() {
	if c.Chat.DefaultMsgRateRps == 0 {
		c.Chat.DefaultMsgRateRps = 5
	}
	if c.Chat.DefaultUploadBps == 0 {
		c.Chat.DefaultUploadBps = 262144 // 256KiB/s
	}
	if c.Chat.DefaultDownloadBps == 0 {
		c.Chat.DefaultDownloadBps = 524288 // 512KiB/s
	}
	if c.Chat.DefaultBurst == 0 {
		c.Chat.DefaultBurst = 10
	}
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = "/data/uploads"
	}
}
