package main

import (
	"fmt"

	"github.com/skadiD/swallow/cache"
	"github.com/spf13/cobra"
)

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Result cache maintenance",
	}

	backend := func(cmd *cobra.Command) (cache.Backend, error) {
		b, err := cache.Open(cmd.Context(), a.cfg.Cache)
		if err != nil {
			return nil, err
		}
		return cache.WithPrefix(b, a.cfg.CachePrefix), nil
	}

	flush := &cobra.Command{
		Use:   "flush",
		Short: "Remove every cached result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backend(cmd)
			if err != nil {
				return err
			}
			if err = b.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache flushed")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <key>...",
		Short: "Remove cached results by key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backend(cmd)
			if err != nil {
				return err
			}
			for _, key := range args {
				ok, err := b.Clear(cmd.Context(), key)
				if err != nil {
					return err
				}
				state := "missing"
				if ok {
					state = "cleared"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, state)
			}
			return nil
		},
	}

	cmd.AddCommand(flush, clearCmd)
	return cmd
}
