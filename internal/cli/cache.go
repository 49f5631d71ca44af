package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cacheInfoCommand(), c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var (
		redisAddr string
		expired   bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached layouts and renders",
		Long: `Remove cached layouts and renders.

By default every entry of the local cache is removed. --expired keeps entries
that are still valid. --redis clears a shared Redis cache instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisAddr != "" {
				rc, err := cache.NewRedisCache(cmd.Context(), cache.RedisOptions{Addr: redisAddr})
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear redis cache: %w", err)
				}
				printSuccess("Removed %d entries", n)
				printDetail("redis %s", redisAddr)
				return nil
			}

			fc, ok, err := openLocalCache()
			if err != nil || !ok {
				return err
			}
			sweep, what := fc.Clear, "entries"
			if expired {
				sweep, what = fc.Prune, "expired entries"
			}
			n, err := sweep()
			if err != nil {
				return fmt.Errorf("clear %s: %w", fc.Dir(), err)
			}
			printSuccess("Removed %d %s", n, what)
			printDetail("%s", fc.Dir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired entries")
	cmd.Flags().StringVar(&redisAddr, "redis", os.Getenv(envRedisAddr), "clear this Redis cache instead of the local one")
	return cmd
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show local cache size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, ok, err := openLocalCache()
			if err != nil || !ok {
				return err
			}
			n, size, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("scan %s: %w", fc.Dir(), err)
			}
			printKeyValues(cmd.OutOrStdout(), [][2]string{
				{"directory", fc.Dir()},
				{"entries", strconv.Itoa(n)},
				{"size", formatBytes(size)},
			})
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("locate cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// openLocalCache opens the local file cache. ok is false, with a notice
// printed, when the cache was never created.
func openLocalCache() (fc *cache.FileCache, ok bool, err error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, false, fmt.Errorf("locate cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("No local cache at %s", dir)
		return nil, false, nil
	}
	fc, err = cache.NewFileCache(dir)
	return fc, err == nil, err
}

// formatBytes renders n with a binary unit, e.g. "12.5 KiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return formatFloat(float64(n)/float64(div)) + " " + string("KMGTPE"[exp]) + "iB"
}
