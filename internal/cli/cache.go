package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dungeonbuilder/pkg/cache"
	"github.com/matzehuels/dungeonbuilder/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached validation reports and rendered trees",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer ch.Close()

			switch cc := ch.(type) {
			case *cache.FileCache:
				if err := cc.Clear(); err != nil {
					return err
				}
				printSuccess("Cleared cache")
				printDetail("Directory: %s", cc.Dir())
			case *cache.RedisCache:
				if err := cc.Clear(cmd.Context()); err != nil {
					return err
				}
				printSuccess("Cleared cache")
				printDetail("Redis: %s", c.Config.Cache.RedisAddr)
			default:
				printInfo("Caching is disabled")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case config.CacheRedis:
				fmt.Println("redis://" + c.Config.Cache.RedisAddr)
			case config.CacheNone:
				printInfo("Caching is disabled")
			default:
				dir, err := c.cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Println(dir)
			}
			return nil
		},
	}
}
