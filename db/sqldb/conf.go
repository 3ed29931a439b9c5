package sqldb

type Conf struct {
	Type string `json:"type" mapstructure:"type"` // mysql, pgsql, sqlite
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
	User string `json:"user" mapstructure:"user"`
	PW   string `json:"pw" mapstructure:"pw"`
	DB   string `json:"db" mapstructure:"db"` // database name, or file path for sqlite
	TZ   string `json:"tz" mapstructure:"tz"`   // Connection Timezone
	DSN  string `json:"dsn" mapstructure:"dsn"` // To Overwrite Default DSN

	MaxOpenConns int `json:"max_open_conns" mapstructure:"max_open_conns"` // 0 -> driver default of the impl
	MaxIdleConns int `json:"max_idle_conns" mapstructure:"max_idle_conns"`
}
