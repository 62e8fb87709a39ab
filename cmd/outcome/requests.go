package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-kit/outcome/client"
	"github.com/go-kit/outcome/codec"
	"github.com/go-kit/outcome/defect"
	"github.com/go-kit/outcome/narrow"
	"github.com/go-kit/outcome/result"
	"github.com/go-kit/outcome/transport"
)

// The CLI does not know the API's types, so bodies stay as decoded JSON.
type outcome = result.Result[*defect.Defect[interface{}], interface{}]

func anyBody() codec.Decoder[interface{}, interface{}] {
	return codec.Raw(narrow.Nullable(narrow.Any()))
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH...",
		Short: "GET one or more paths concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			return opts.run(cmd.Context(), paths, func(ctx context.Context, e *env, path string) outcome {
				return client.Get(ctx, e.client, path, anyBody(), anyBody())
			})
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PATH...",
		Short: "DELETE one or more paths concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			return opts.run(cmd.Context(), paths, func(ctx context.Context, e *env, path string) outcome {
				return client.Delete(ctx, e.client, path, anyBody(), anyBody())
			})
		},
	}
}

func newSendCmd(opts *options, verb string) *cobra.Command {
	var (
		data  string
		form  []string
		files []string
	)
	cmd := &cobra.Command{
		Use:   verb + " PATH",
		Short: strings.ToUpper(verb) + " a JSON or multipart payload to PATH",
		Long: strings.ToUpper(verb) + ` a payload to PATH.

The payload is --data as JSON (@file reads a file, - reads stdin). It must
be a JSON object or array; anything else is reported as invalid_payload
without sending. --form and --file send multipart form data instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				payload interface{}
				err     error
			)
			if len(form) > 0 || len(files) > 0 {
				payload, err = formPayload(form, files)
			} else {
				payload, err = jsonPayload(data, cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			send := client.Post[interface{}, interface{}, interface{}, interface{}]
			if verb == "put" {
				send = client.Put[interface{}, interface{}, interface{}, interface{}]
			}
			return opts.run(cmd.Context(), args, func(ctx context.Context, e *env, path string) outcome {
				return send(ctx, e.client, path, payload, anyBody(), anyBody())
			})
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload, @file or -")
	cmd.Flags().StringArrayVarP(&form, "form", "F", nil, "form field as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "form file as field=path (repeatable)")
	return cmd
}

func jsonPayload(data string, stdin io.Reader) (interface{}, error) {
	var raw []byte
	switch {
	case data == "":
		return nil, nil
	case data == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		raw = b
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		raw = b
	default:
		raw = []byte(data)
	}
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payload is not JSON: %w", err)
	}
	return payload, nil
}

func formPayload(form, files []string) (*transport.FormData, error) {
	fd := transport.NewFormData()
	for _, f := range form {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("form field %q: want key=value", f)
		}
		fd.Add(k, v)
	}
	for _, f := range files {
		field, path, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("form file %q: want field=path", f)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("form file: %w", err)
		}
		fd.AddFile(field, filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), content)
	}
	return fd, nil
}

// run sends one request per path, at most opts.concurrency at a time, and
// prints the outcomes in argument order.
func (o *options) run(ctx context.Context, paths []string, call func(context.Context, *env, string) outcome) error {
	e, err := o.build()
	if err != nil {
		return err
	}

	outcomes := make([]outcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			outcomes[i] = call(gctx, e, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed int
	for i, r := range outcomes {
		if !printOutcome(o.stdout, paths[i], r) {
			failed++
		}
	}
	if o.metrics {
		if err := printMetrics(o.stdout, e.registry); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(paths))
	}
	return nil
}
