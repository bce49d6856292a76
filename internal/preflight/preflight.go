package preflight

import (
	"context"
	"fmt"
	"strings"

	"wpp/internal/config"
	"wpp/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if strings.TrimSpace(cfg.Paths.APIBind) != "" {
		results = append(results, CheckBindAddress(cfg.Paths.APIBind))
	}
	results = append(results, CheckRecords(ctx, cfg))
	return results
}

// FirstFailure returns a configuration error for the first failed result.
func FirstFailure(results []Result) error {
	for _, r := range results {
		if !r.Passed {
			return services.Wrap(services.ErrConfiguration, "preflight", r.Name, r.Detail, nil)
		}
	}
	return nil
}

// Summary renders results as "name: detail" lines.
func Summary(results []Result) string {
	var b strings.Builder
	for _, r := range results {
		mark := "ok"
		if !r.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", mark, r.Name, r.Detail)
	}
	return b.String()
}
