package main

import (
	"context"
	"io"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/logger"
)

// env holds lazily opened resources shared by subcommands.
type env struct {
	configPath string
	out        io.Writer

	cfg   *config.Config
	db    *gorm.DB
	redis *goredis.Client
}

func (e *env) config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if e.configPath != "" {
		cfg, err = config.LoadFrom(e.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	e.cfg = cfg
	return cfg, nil
}

func (e *env) database() (*gorm.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *env) redisClient() (*goredis.Client, error) {
	if e.redis != nil {
		return e.redis, nil
	}
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	e.redis = client
	return client, nil
}

func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if e.redis != nil {
		_ = e.redis.Close()
	}
}

// execute runs the command line in args and releases whatever the
// subcommand opened, whether or not it succeeded.
func execute(ctx context.Context, out io.Writer, args []string) error {
	e := &env{out: out}
	defer e.close()

	cmd := newRootCommand(e)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "libraryctl",
		Short:        "operate the library service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := os.Getenv(config.EnvPrefix + "_LOG_LEVEL")
			if level == "" {
				level = "warn"
			}
			logger.Init(level, "console", os.Stderr)
			return nil
		},
	}
	cmd.SetOut(e.out)
	cmd.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "config file (default config/config.yaml)")

	cmd.AddCommand(
		userCommand(e),
		tokenCommand(e),
		instancesCommand(e),
		reportCommand(e),
		eventsCommand(e),
	)
	return cmd
}
