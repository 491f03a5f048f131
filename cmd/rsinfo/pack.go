package main

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/devblok/rendersys/shaderpack"
)

func newPackCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build and inspect shader packs",
	}
	cmd.AddCommand(newPackBuildCommand(opts), newPackListCommand(opts))
	return cmd
}

func newPackBuildCommand(opts *options) *cobra.Command {
	var (
		output string
		author string
	)
	cmd := &cobra.Command{
		Use:   "build <shader dir>",
		Short: "Pack every name.stage.spv file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := shaderpack.NewBuilder(shaderpack.Header{
				Author:      author,
				DateCreated: time.Now().Unix(),
			})
			if err := builder.AddDir(args[0]); err != nil {
				return err
			}
			if builder.Len() == 0 {
				return errors.Newf("no compiled shaders found in %s", args[0])
			}

			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "create pack")
			}
			written, err := builder.WriteTo(f)
			if err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "close pack")
			}

			p := opts.printer(cmd)
			if p.json {
				return p.JSON(map[string]interface{}{"path": output, "shaders": builder.Len(), "bytes": written})
			}
			p.Title(output)
			p.Field("shaders", builder.Len())
			p.Field("bytes", written)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "shaders.rspk", "pack file to write")
	cmd.Flags().StringVar(&author, "author", "", "author recorded in the pack header")
	return cmd
}

func newPackListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <pack>",
		Short: "List the shaders in a pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := shaderpack.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer pack.Close()

			p := opts.printer(cmd)
			if p.json {
				return p.JSON(pack.Header())
			}
			h := pack.Header()
			p.Title(args[0])
			p.Field("author", h.Author)
			p.Field("created", time.Unix(h.DateCreated, 0).Format(time.RFC3339))
			p.Field("version", h.Version)
			for _, e := range pack.Entries() {
				p.Field(e.Name, e.Stage.String()+" "+e.EntryPoint)
			}
			return nil
		},
	}
}
