package kvdb

type Conf struct {
	Type string `json:"type" mapstructure:"type"` // redis, memory
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
	PW   string `json:"pw" mapstructure:"pw"`
	DB   int    `json:"db" mapstructure:"db"`     // optional db number e.g. redis
	Size int    `json:"size" mapstructure:"size"` // max entries for in-process stores
}
