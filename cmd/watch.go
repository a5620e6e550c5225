package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/tokensplit/internal/cache"
	"github.com/gnoswap-labs/tokensplit/internal/watch"
	"github.com/gnoswap-labs/tokensplit/rules"
	"github.com/gnoswap-labs/tokensplit/tokenio"
)

var watchOutput string

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-split token files whenever they or the rules file change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cfgFile, args, watchOutput)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Output directory (defaults to <name>.split<ext> next to each input)")
}

// splitSession holds the current compiled rules so a rules file change
// swaps them for every later input event.
type splitSession struct {
	mu       sync.Mutex
	cfgPath  string
	output   string
	inputs   []string
	compiled []rules.Compiled
	results  *cache.Cache
}

func (s *splitSession) reload() error {
	compiled, err := loadRules(s.cfgPath, "")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.compiled = compiled
	s.mu.Unlock()
	s.results.InvalidateAll()
	logger.Info("rules reloaded", zap.String("path", s.cfgPath), zap.Int("rules", len(compiled)))
	return nil
}

// splitOne skips inputs whose content and rules are unchanged since the
// last run, since one save often emits several write events.
func (s *splitSession) splitOne(path string) error {
	if _, ok := s.results.Get(path); ok {
		logger.Debug("unchanged, skipping", zap.String("path", path))
		return nil
	}
	s.mu.Lock()
	compiled := s.compiled
	s.mu.Unlock()

	tokens, err := tokenio.ReadFile(path)
	if err != nil {
		return err
	}
	result, err := rules.Apply(logger, tokens, compiled)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	dest := watchDestination(s.output, path)
	if err := tokenio.WriteFile(dest, result); err != nil {
		return err
	}
	logger.Info("split tokens", zap.String("path", path), zap.String("output", dest), zap.Int("before", len(tokens)), zap.Int("after", len(result)))
	return s.results.Set(path, result)
}

func (s *splitSession) handle(path string) error {
	cfgAbs, err := filepath.Abs(s.cfgPath)
	if err != nil {
		return err
	}
	if path != cfgAbs {
		return s.splitOne(path)
	}
	if err := s.reload(); err != nil {
		return err
	}
	for _, in := range s.inputs {
		if err := s.splitOne(in); err != nil {
			return err
		}
	}
	return nil
}

func runWatch(ctx context.Context, cfgPath string, inputs []string, output string) error {
	s := &splitSession{
		cfgPath: cfgPath,
		output:  output,
		inputs:  inputs,
		results: cache.New(cfgPath),
	}
	if err := s.reload(); err != nil {
		return err
	}
	if output != "" {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return err
		}
	}
	for _, in := range inputs {
		if err := s.splitOne(in); err != nil {
			return err
		}
	}

	w, err := watch.New(logger, append([]string{cfgPath}, inputs...), s.handle)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	logger.Info("watching", zap.Strings("inputs", inputs), zap.String("rules", cfgPath))

	<-ctx.Done()
	return w.Stop()
}

// watchDestination never returns the input itself, so writing the result
// does not trigger another event for a watched file.
func watchDestination(output, input string) string {
	if output != "" {
		return filepath.Join(output, filepath.Base(input))
	}
	ext := filepath.Ext(input)
	return input[:len(input)-len(ext)] + ".split" + ext
}
