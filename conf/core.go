package conf

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/spf13/afero"

	"github.com/zeptools/gw-mapper/db"
	"github.com/zeptools/gw-mapper/db/kvdb"
	_ "github.com/zeptools/gw-mapper/db/kvdb/impls/memory"
	_ "github.com/zeptools/gw-mapper/db/kvdb/impls/redis"
	"github.com/zeptools/gw-mapper/db/sqldb"
	_ "github.com/zeptools/gw-mapper/db/sqldb/impls/mysql"
	_ "github.com/zeptools/gw-mapper/db/sqldb/impls/pgsql"
	_ "github.com/zeptools/gw-mapper/db/sqldb/impls/sqlite"
	"github.com/zeptools/gw-mapper/entity"
	"github.com/zeptools/gw-mapper/mapper"
	"github.com/zeptools/gw-mapper/svc"
)

// Core holds the clients, entities and DAOs of one application.
type Core struct {
	Conf       *Conf
	AppRoot    string
	Fs         afero.Fs
	RootCtx    context.Context    // Global Context with RootCancel
	RootCancel context.CancelFunc // CancelFunc for RootCtx

	SQLDBClients map[string]sqldb.Client // PrepareSQLDatabases
	KVDBClient   kvdb.Client             // PrepareKVDatabase
	Entities     *entity.Registry        // LoadEntities
	Watcher      *mapper.Watcher         // set when Mapping.Watch

	services []svc.Service // Services to Manage
	done     chan error
}

// NewCore loads the config of appRoot and prepares the base fields.
func NewCore(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) (*Core, error) {
	return NewCoreFs(afero.NewOsFs(), appRoot, rootCtx, rootCancel)
}

func NewCoreFs(fsys afero.Fs, appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) (*Core, error) {
	c, err := LoadFs(fsys, appRoot)
	if err != nil {
		return nil, err
	}
	core := &Core{
		Conf:         c,
		AppRoot:      appRoot,
		Fs:           fsys,
		RootCtx:      rootCtx,
		RootCancel:   rootCancel,
		SQLDBClients: make(map[string]sqldb.Client),
		Entities:     entity.NewRegistry(),
	}
	if c.Mapping.Watch {
		core.Watcher = mapper.NewWatcher(rootCtx)
		core.AddService(core.Watcher)
	}
	return core, nil
}

func (c *Core) AddService(s svc.Service) {
	log.Printf("[INFO] adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Printf("[INFO] total services: %d", len(c.services))
}

func (c *Core) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s)
	}
	return nil
}

func (c *Core) WaitServicesDone() error {
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

// StartShutdownSignalListener cancels RootCtx on SIGINT or SIGTERM.
func (c *Core) StartShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Printf("[INFO] got signal [%s]. shutting down app [%s] ...", sig, c.Conf.AppName)
			c.RootCancel()
		}()
	})
	log.Printf("[INFO][CORE] shutdown signal listener started")
}

// PrepareSQLDatabases builds and inits a client per configured database.
func (c *Core) PrepareSQLDatabases() error {
	names := make([]string, 0, len(c.Conf.SQLDatabases))
	for name := range c.Conf.SQLDatabases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dbConf := c.Conf.SQLDatabases[name]
		client, err := sqldb.New(dbConf.Type, dbConf)
		if err != nil {
			return fmt.Errorf("sql database %q: %w", name, err)
		}
		if err = client.Init(); err != nil {
			return fmt.Errorf("sql database %q: %w", name, err)
		}
		c.SQLDBClients[name] = client
	}
	return nil
}

// PrepareKVDatabase builds and inits the kv client when one is configured.
func (c *Core) PrepareKVDatabase() error {
	if c.Conf.KVDatabase == nil || c.Conf.KVDatabase.Type == "" {
		return nil
	}
	client, err := kvdb.New(c.Conf.KVDatabase.Type, c.Conf.KVDatabase)
	if err != nil {
		return err
	}
	if err = client.Init(); err != nil {
		return err
	}
	c.KVDBClient = client
	return nil
}

// SQLHandle returns the handle of a prepared database.
func (c *Core) SQLHandle(dbName string) (sqldb.Handle, error) {
	client, ok := c.SQLDBClients[dbName]
	if !ok {
		return nil, fmt.Errorf("sql database %q not prepared", dbName)
	}
	return client.GetHandle(), nil
}

// LoadEntities discovers the entity definitions under Entities.Root and
// registers them. With Entities.Sync, missing tables are created on dbName.
func (c *Core) LoadEntities(ctx context.Context, dbName string) ([]*entity.Entity, error) {
	root := filepath.Join(c.AppRoot, c.Conf.Entities.Root)
	exclude := c.Conf.Entities.Exclude
	if len(exclude) == 0 {
		exclude = entity.DefaultExclude
	}
	var h sqldb.Handle
	if c.Conf.Entities.Sync {
		var err error
		if h, err = c.SQLHandle(dbName); err != nil {
			return nil, err
		}
	}
	return entity.LoadEntities(ctx, c.Fs, root, exclude, c.Entities, h)
}

// NewDAO builds a DAO on dbName for a registered entity (empty for none)
// and a mapping document in Mapping.Dir (empty for none).
func (c *Core) NewDAO(dbName, entityName, document string) (*mapper.DAO, error) {
	h, err := c.SQLHandle(dbName)
	if err != nil {
		return nil, err
	}
	var e *entity.Entity
	if entityName != "" {
		var ok bool
		if e, ok = c.Entities.Get(entityName); !ok {
			return nil, fmt.Errorf("entity %q not registered", entityName)
		}
	}
	path := ""
	if document != "" {
		path = filepath.Join(c.AppRoot, c.Conf.Mapping.Dir, document)
	}
	opts := []mapper.Option{mapper.WithFs(c.Fs), mapper.WithEntities(c.Entities)}
	if c.KVDBClient != nil && c.Conf.Page.CountCacheTTL > 0 {
		opts = append(opts, mapper.WithCountCache(c.KVDBClient, c.Conf.Page.CountCacheTTL))
	}
	d, err := mapper.New(h, e, path, opts...)
	if err != nil {
		return nil, err
	}
	if c.Watcher != nil {
		if err := c.Watcher.Watch(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (c *Core) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.KVDBClient != nil {
		db.CloseClient("kv database", c.KVDBClient)
	}
	for name, client := range c.SQLDBClients {
		db.CloseClient(fmt.Sprintf("%s sql database %q", client.GetConf().Type, name), client)
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}
