package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pixeldrift/pixeldrift/pkg/config"
	"github.com/pixeldrift/pixeldrift/pkg/fpcache"
)

// newCacheCmd creates the fingerprint cache management command.
func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the fingerprint cache",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default pixeldrift.toml if present)")

	cmd.AddCommand(newCacheShowCmd(&configPath))
	cmd.AddCommand(newCacheClearCmd(&configPath))
	cmd.AddCommand(newCachePathCmd(&configPath))

	return cmd
}

// openCacheStore resolves the cache backend from the config file for the
// cache subcommands, applying the same path defaults as the run command.
func openCacheStore(ctx context.Context, configPath string) (fpcache.Store, config.Config, error) {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = defaultWorkDir
	}
	if cfg.Cache.Backend == config.CacheFile && cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join(cfg.WorkDir, fpcache.DefaultFilename)
	}
	store, err := newCacheStore(ctx, cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	return store, cfg, nil
}

// newCacheShowCmd creates the "cache show" subcommand.
func newCacheShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List cached fingerprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openCacheStore(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			table, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(table) == 0 {
				printInfo("Cache is empty")
				return nil
			}

			stems := make([]string, 0, len(table))
			for stem := range table {
				stems = append(stems, stem)
			}
			sort.Strings(stems)
			for _, stem := range stems {
				printKeyValue(table[stem], stem)
			}
			printDetail("%d entries", len(table))
			return nil
		},
	}
}

// newCacheClearCmd creates the "cache clear" subcommand.
func newCacheClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop all cached fingerprints",
		Long:  `Drop all cached fingerprints. The next run re-renders and re-compares every corpus entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openCacheStore(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			table, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), nil); err != nil {
				return err
			}
			printSuccess("Cleared %d cached fingerprints", len(table))
			return nil
		},
	}
}

// newCachePathCmd creates the "cache path" subcommand.
func newCachePathCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := openCacheStore(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case config.CacheRedis:
				fmt.Printf("redis://%s/%s\n", cfg.Cache.Addr, cfg.Cache.Key)
			case config.CacheNone:
				printInfo("Caching is disabled")
			default:
				fmt.Println(cfg.Cache.Path)
			}
			return nil
		},
	}
}
