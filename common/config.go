// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

import (
	"time"

	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/sasha-s/go-deadlock"
	"gopkg.in/ini.v1"
)

var EnableDebug bool = false

const (
	// size of a data page in byte
	DefaultPageSize = 4096
	// number of pages the buffer pool caches unless configured otherwise
	DefaultBufferPoolPages = 50
	// fixed byte width of a varchar column
	VarcharLength = 32
	// go-deadlock reports a mutex held or waited for longer than this
	DefaultMutexDeadlockTimeout = 30 * time.Second
)

// Config is the process wide setting of a database instance. It is built once
// and handed to the buffer pool, disk managers and heap files at construction.
type Config struct {
	Raw *ini.File

	PageSize        int
	BufferPoolPages int
	DataDir         string
	UseVirtualDisk  bool

	LogLevel string

	MutexDeadlockTimeout time.Duration
}

func NewConfig() *Config {
	return &Config{
		Raw:                  ini.Empty(),
		PageSize:             DefaultPageSize,
		BufferPoolPages:      DefaultBufferPoolPages,
		DataDir:              "data",
		UseVirtualDisk:       false,
		LogLevel:             "info",
		MutexDeadlockTimeout: DefaultMutexDeadlockTimeout,
	}
}

// NewConfigForTesting returns an on-memory configuration with a small pool.
func NewConfigForTesting(poolPages int) *Config {
	cfg := NewConfig()
	cfg.BufferPoolPages = poolPages
	cfg.UseVirtualDisk = true
	cfg.LogLevel = "warn"
	return cfg
}

/*
[storage]
page_size         = 4096
buffer_pool_pages = 50
data_dir          = data
virtual_disk      = false

[log]
level = info

[debug]
mutex_deadlock_timeout = 30s
*/
func LoadConfig(path string) (*Config, error) {
	raw, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load config file %s", path)
	}
	cfg := NewConfig()
	cfg.Raw = raw

	storage := raw.Section("storage")
	cfg.PageSize = storage.Key("page_size").MustInt(DefaultPageSize)
	cfg.BufferPoolPages = storage.Key("buffer_pool_pages").MustInt(DefaultBufferPoolPages)
	cfg.DataDir = storage.Key("data_dir").MustString("data")
	cfg.UseVirtualDisk = storage.Key("virtual_disk").MustBool(false)

	cfg.LogLevel = raw.Section("log").Key("level").MustString("info")
	cfg.MutexDeadlockTimeout = raw.Section("debug").Key("mutex_deadlock_timeout").MustDuration(DefaultMutexDeadlockTimeout)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return errors.Errorf("page_size must be positive: %d", c.PageSize)
	}
	if c.BufferPoolPages <= 0 {
		return errors.Errorf("buffer_pool_pages must be positive: %d", c.BufferPoolPages)
	}
	return nil
}

// ConfigureMutexDiagnostics applies the config to go-deadlock, which wraps the
// lock table and buffer pool mutexes.
func ConfigureMutexDiagnostics(c *Config) {
	deadlock.Opts.DeadlockTimeout = c.MutexDeadlockTimeout
	deadlock.Opts.Disable = !EnableDebug
}
