package conf

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/zeptools/gw-mapper/db/kvdb"
	"github.com/zeptools/gw-mapper/db/sqldb"
)

const (
	ConfigName = "gw-mapper"
	EnvPrefix  = "GW_MAPPER"
)

// Conf is the content of config/gw-mapper.{yaml,json}.
// Every scalar can be overridden by GW_MAPPER_<SECTION>_<KEY>.
type Conf struct {
	AppName      string                 `mapstructure:"app_name"`
	SQLDatabases map[string]*sqldb.Conf `mapstructure:"sql_databases"` // by db name
	KVDatabase   *kvdb.Conf             `mapstructure:"kv_database"`   // optional. page-count cache
	Mapping      MappingConf            `mapstructure:"mapping"`
	Entities     EntitiesConf           `mapstructure:"entities"`
	Page         PageConf               `mapstructure:"page"`
}

type MappingConf struct {
	Dir   string `mapstructure:"dir"`   // mapping documents, relative to app root
	Watch bool   `mapstructure:"watch"` // reload documents on write
}

type EntitiesConf struct {
	Root    string   `mapstructure:"root"` // entity definition tree, relative to app root
	Exclude []string `mapstructure:"exclude"`
	Sync    bool     `mapstructure:"sync"` // create missing tables on load
}

type PageConf struct {
	CountCacheTTL time.Duration `mapstructure:"count_cache_ttl"` // 0 disables the count cache
}

// Load reads the config of the app at appRoot from the OS filesystem.
func Load(appRoot string) (*Conf, error) {
	return LoadFs(afero.NewOsFs(), appRoot)
}

// LoadFs loads .env and .env.local from appRoot into the process
// environment, then reads the config file from appRoot/config or
// ~/.config/gw-mapper. A missing config file leaves the defaults.
func LoadFs(fsys afero.Fs, appRoot string) (*Conf, error) {
	if err := loadDotEnv(fsys, filepath.Join(appRoot, ".env"), false); err != nil {
		return nil, err
	}
	if err := loadDotEnv(fsys, filepath.Join(appRoot, ".env.local"), true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigName(ConfigName)
	v.AddConfigPath(filepath.Join(appRoot, "config"))
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_name", ConfigName)
	v.SetDefault("mapping.dir", "mapping")
	v.SetDefault("mapping.watch", false)
	v.SetDefault("entities.root", "entities")
	v.SetDefault("entities.exclude", []string{})
	v.SetDefault("entities.sync", false)
	v.SetDefault("page.count_cache_ttl", time.Duration(0))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("[WARN][CONF] no %s config file found, using defaults", ConfigName)
	} else {
		log.Printf("[INFO][CONF] config loaded from %s", v.ConfigFileUsed())
	}

	c := &Conf{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// loadDotEnv sets the variables of a dotenv file. Without overload, variables
// already in the environment win. A missing file is not an error.
func loadDotEnv(fsys afero.Fs, p string, overload bool) error {
	f, err := fsys.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	vars, err := godotenv.Parse(io.Reader(f))
	if err != nil {
		return fmt.Errorf("parse %s: %w", p, err)
	}
	for k, val := range vars {
		if _, set := os.LookupEnv(k); set && !overload {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	log.Printf("[INFO][CONF] env loaded from %s", p)
	return nil
}
