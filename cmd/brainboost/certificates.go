package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/export"
)

func certificatesCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificates",
		Short: "List earned certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				certs, err := a.client.Certificates(ctx)
				if err != nil {
					return err
				}

				w := newTable(cmd.OutOrStdout())
				row(w, "ID", "COURSE", "ISSUED", "FILE")
				for _, c := range certs {
					row(w, c.ID, excerpt(c.CourseTitle, 40), c.IssuedAt.Format("2006-01-02"), export.FileName(c))
				}
				return w.Flush()
			})
		},
	}

	cmd.AddCommand(exportCmd(g))
	return cmd
}

func exportCmd(g *globalOptions) *cobra.Command {
	var dir, bucket string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download certificate PDFs to a directory or an S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (dir == "") == (bucket == "") {
				return errors.New("exactly one of --dir or --s3-bucket is required")
			}

			return run(cmd, g, false, func(ctx context.Context, a *app) error {
				var (
					sink   export.Sink
					target string
				)

				if dir != "" {
					s, err := export.NewDirSink(dir)
					if err != nil {
						return err
					}
					sink, target = s, s.Dir()
				} else {
					ecfg := a.cfg.Export
					ecfg.Bucket = bucket
					s, err := export.NewS3Sink(ctx, ecfg)
					if err != nil {
						return err
					}
					sink, target = s, "s3://"+bucket+"/"+ecfg.Prefix
				}

				n, err := export.New(a.client, sink, a.log).Export(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d certificate(s) to %s\n", n, target)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "local directory")
	cmd.Flags().StringVar(&bucket, "s3-bucket", "", "S3/MinIO bucket (endpoint and keys from config)")

	return cmd
}
