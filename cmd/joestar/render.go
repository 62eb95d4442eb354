package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joestar-dev/joestar/internal/config"
	"github.com/joestar-dev/joestar/internal/demo"
	"github.com/joestar-dev/joestar/internal/errors"
	"github.com/joestar-dev/joestar/pkg/render"
	"github.com/joestar-dev/joestar/pkg/snapshot"
)

const defaultPageName = "index.html"

func renderCmd(opts *options) *cobra.Command {
	var (
		out   string
		title string
	)

	cmd := &cobra.Command{
		Use:   "render [name]",
		Short: "Publish the demo page as a standalone HTML file",
		Long: `Render the demo view to a standalone page and store it.

The destination is --out, or snapshot.dir / snapshot.s3 from the
configuration file. An s3://bucket/prefix destination uploads the page
with the credentials in AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultPageName
			if len(args) == 1 {
				name = args[0]
			}
			if cmd.Flags().Changed("out") {
				if err := setOutput(&opts.cfg.Snapshot, out); err != nil {
					return err
				}
			}
			if title == "" {
				title = opts.cfg.Window.Title
			}

			store, err := newStore(opts.cfg.Snapshot)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			location, err := snapshot.Publish(ctx, store, name, demo.Tree(), render.PageData{Title: title})
			if err != nil {
				return errors.New("J141").Wrap(err)
			}
			success(cmd.OutOrStdout(), "Published %s", location)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "destination directory or s3://bucket/prefix")
	cmd.Flags().StringVar(&title, "title", "", "page title")

	return cmd
}

// setOutput points sc at a directory or an s3:// location.
func setOutput(sc *config.SnapshotConfig, out string) error {
	rest, ok := strings.CutPrefix(out, "s3://")
	if !ok {
		if out == "" {
			return errors.New("J121").WithDetail("--out is empty")
		}
		sc.Dir = out
		sc.S3.Bucket = ""
		return nil
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return errors.New("J121").WithDetail("no bucket in " + out)
	}
	sc.S3.Bucket = bucket
	sc.S3.Prefix = prefix
	return nil
}

func newStore(sc config.SnapshotConfig) (snapshot.Store, error) {
	if sc.S3.Bucket != "" {
		client := snapshot.NewS3Client(snapshot.S3Options{
			Region:          sc.S3.Region,
			Endpoint:        sc.S3.Endpoint,
			PathStyle:       sc.S3.PathStyle,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		})
		prefix := sc.S3.Prefix
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		return snapshot.NewS3Store(client, sc.S3.Bucket, prefix), nil
	}
	dir := sc.Dir
	if dir == "" {
		dir = "."
	}
	store, err := snapshot.NewFileStore(dir)
	if err != nil {
		return nil, errors.New("J121").WithDetail("cannot create " + dir).Wrap(err)
	}
	return store, nil
}
