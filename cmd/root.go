package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/learnhub/internal/cache"
	"github.com/abhisek/learnhub/internal/contentgen"
	"github.com/abhisek/learnhub/internal/i18n"
	"github.com/abhisek/learnhub/internal/llm"
	"github.com/abhisek/learnhub/internal/logging"
	"github.com/abhisek/learnhub/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "learnhub",
	Short: "AI-assisted learning backend",
	Long:  "learnhub generates quizzes and course outlines with a generative model, stores quiz results and serves a learner dashboard.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		if err := logging.Setup(v.GetString("log-level"), v.GetString("log-format")); err != nil {
			return err
		}
		return i18n.Init(v.GetString("lang"))
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "SQLite path or postgres:// DSN (overrides LEARNHUB_DB)")
	pf.Int("db-max-open", 10, "Max open connections (Postgres only)")
	pf.Int("db-max-idle", 5, "Max idle connections (Postgres only)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("lang", "en", "Fallback language for user-facing messages")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// viperForCmd binds the command's flags, LEARNHUB_* env vars and an
// optional learnhub.{yaml,json,toml} config file.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("LEARNHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("learnhub")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/learnhub")
	v.AddConfigPath("/etc/learnhub")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logging.Logger().WithError(err).Warn("error reading config file")
		}
	} else {
		logging.Logger().WithField("path", v.ConfigFileUsed()).Debug("loaded config file")
	}

	return v
}

// resolveDBPath returns the --db value (or LEARNHUB_DB via viper), then
// the default XDG path.
func resolveDBPath(v *viper.Viper) (string, error) {
	if p := v.GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the configured database and runs migrations.
func openStore(v *viper.Viper) (*store.Store, error) {
	dsn, err := resolveDBPath(v)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dsn,
		store.WithPool(v.GetInt("db-max-open"), v.GetInt("db-max-idle")),
		store.WithConnMaxLifetime(30*time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// newGenerator builds the content generator, with a course cache when
// course-cache-ttl is positive. The returned cache may be nil.
func newGenerator(ctx context.Context, v *viper.Viper, provider llm.Provider) (contentgen.Generator, cache.Cache, error) {
	gen := contentgen.Generator(contentgen.New(provider, contentgen.DefaultConfig()))

	ttl := v.GetDuration("course-cache-ttl")
	if ttl <= 0 {
		return gen, nil, nil
	}

	var c cache.Cache
	if addr := v.GetString("redis-addr"); addr != "" {
		r, err := cache.NewRedis(ctx, addr, "learnhub:")
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		c = r
	} else {
		c = cache.NewMemory(cache.DefaultMemoryEntries, ttl)
	}
	logging.WithContext(ctx).WithField("ttl", ttl.String()).Info("course content cache enabled")
	return contentgen.WithCache(gen, c, ttl), c, nil
}

// openProvider opens the store and an LLM provider configured through v
// (flags, LEARNHUB_* env or the config file) that logs its calls to the
// store. Callers close the returned store.
func openProvider(ctx context.Context, v *viper.Viper) (*store.Store, llm.Provider, error) {
	st, err := openStore(v)
	if err != nil {
		return nil, nil, err
	}
	provider, err := llm.NewProviderFrom(ctx, v.GetString, st.EventRepo())
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	return st, provider, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
