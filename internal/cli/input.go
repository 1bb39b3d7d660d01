package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/hugr-lab/aggql"
)

// maxParallelFiles bounds concurrent request file reads and compilations.
const maxParallelFiles = 8

// readRequest reads a JSON or YAML request document. "-" reads stdin.
func readRequest(stdin io.Reader, path string) (aggql.Request, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is caller-controlled
	}
	if err != nil {
		return aggql.Request{}, fmt.Errorf("read %s: %w", path, err)
	}
	req, err := aggql.DecodeRequest(data)
	if err != nil {
		return aggql.Request{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// compileFiles reads and compiles every file concurrently.
// Outputs are returned in argument order; the first error cancels the rest.
func compileFiles(ctx context.Context, stdin io.Reader, paths []string, compile func(aggql.Request) (string, error)) ([]string, error) {
	out := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			req, err := readRequest(stdin, path)
			if err != nil {
				return err
			}
			text, err := compile(req)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func validateStdin(paths []string) error {
	n := 0
	for _, p := range paths {
		if p == "-" {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("stdin (-) can be given only once")
	}
	return nil
}
