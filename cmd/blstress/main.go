// Command blstress drives concurrent inserts and finds against a
// blinktree.Tree to exercise the split/cascade path under contention,
// the way the teacher's own insertAndFindConcurrently test does, but
// as a standalone, configurable load generator rather than a fixed
// *_test.go case. Configuration follows the pack's viper/pflag
// convention for process-level CLI tools (tuannm99-novasql's
// internal/config.go loads its server config the same way, via a
// mapstructure-tagged struct bound through viper).
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/berleon/blinktree"
)

// stressConfig is the flat set of knobs blstress accepts, bindable
// from flags, environment variables (BLSTRESS_*), or a config file via
// viper.Unmarshal.
type stressConfig struct {
	Capacity int  `mapstructure:"capacity"`
	Keys     int  `mapstructure:"keys"`
	Workers  int  `mapstructure:"workers"`
	UUIDIDs  bool `mapstructure:"uuid_ids"`
	Verbose  bool `mapstructure:"verbose"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "blstress:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("blstress", pflag.ContinueOnError)
	flags.Int("capacity", 64, "fanout threshold before a node splits")
	flags.Int("keys", 100_000, "total number of distinct keys to insert")
	flags.Int("workers", 8, "number of concurrent goroutines inserting and finding")
	flags.Bool("uuid-ids", false, "allocate pages with version-7 UUIDs instead of a sequential counter")
	flags.Bool("verbose", false, "enable debug-level logging from the tree")
	flags.String("config", "", "optional YAML config file; flags override its values")

	if err := flags.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix("blstress")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	// The flag is spelled uuid-ids but the config key is uuid_ids.
	if err := v.BindPFlag("uuid_ids", flags.Lookup("uuid-ids")); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var cfg stressConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return stress(cfg, logger)
}

func stress(cfg stressConfig, logger *slog.Logger) error {
	opts := []blinktree.Option[int, int]{blinktree.WithLogger[int, int](logger)}
	if cfg.UUIDIDs {
		opts = append(opts, blinktree.WithUUIDPageIDs[int, int]())
	}
	tr := blinktree.New[int, int](cfg.Capacity, opts...)

	keys := make([]int, cfg.Keys)
	perm := rand.New(rand.NewSource(time.Now().UnixNano())).Perm(cfg.Keys)
	copy(keys, perm)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i, key := range keys {
				if i%cfg.Workers != id {
					continue
				}
				tr.Insert(key, key*2)
				if _, found := tr.Find(key); !found {
					logger.Error("inserted key not found immediately after insert", "key", key)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	snap := tr.Stats()
	logger.Info("stress run complete",
		"keys", cfg.Keys,
		"workers", cfg.Workers,
		"capacity", cfg.Capacity,
		"elapsed", elapsed,
		"entries", snap.Entries,
		"leaves", snap.Leaves,
		"interior", snap.Interior,
		"insertions", snap.Insertions,
	)
	return nil
}
