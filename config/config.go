package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var GConfig *Config

func Init(filePath string) {
	config, err := os.ReadFile(filePath)
	if err != nil {
		panic(err)
	}
	initFromYaml(config)
	err = GConfig.Verify()
	if err != nil {
		panic(err)
	}
}

func initFromYaml(config []byte) {
	err := yaml.Unmarshal(config, &GConfig)
	if err != nil {
		panic(err)
	}
}

type Config struct {
	DataDir        string `yaml:"data_dir"`
	GalleryEnabled bool   `yaml:"gallery_enabled"`
	LogLevel       string `yaml:"log_level"`
	LogFile        string `yaml:"log_file"`
	LogMaxSize     int    `yaml:"log_max_size"`
	LogMaxBackups  int    `yaml:"log_max_backups"`
	LogMaxAge      int    `yaml:"log_max_age"`
}

func (c *Config) Verify() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if c.LogFile == "" {
		c.LogFile = "prompt-hub.log"
	}
	if c.LogMaxSize == 0 {
		c.LogMaxSize = 50
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAge == 0 {
		c.LogMaxAge = 28
	}
	return nil
}
