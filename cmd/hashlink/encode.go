package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/hashlink"
	"github.com/spf13/cobra"
)

func newEncodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Compress a document into a hashlink",
		Long: `Read an HTML document from --file or standard input and print the
hashlink that carries it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.encode(cmd)
		},
	}

	f := cmd.Flags()
	f.StringP("title", "t", "", "document title (default \""+hashlink.DefaultTitle+"\")")
	f.StringP("file", "f", "", "read the document from a file instead of stdin")
	f.Int("preset", hashlink.DefaultPreset, "LZMA compression preset, 1-9")
	f.String("host", hashlink.DefaultHost, "host placed in the link")
	f.Bool("reroute", false, "embed the document as plain base64 without compression")
	a.bind(f, "title", "file", "preset", "host", "reroute")

	return cmd
}

func (a *app) encode(cmd *cobra.Command) error {
	doc, err := readDocument(cmd.InOrStdin(), a.v.GetString("file"))
	if err != nil {
		return err
	}

	c := hashlink.NewComposer(hashlink.ComposeConfig{
		Host:   a.v.GetString("host"),
		Preset: a.v.GetInt("preset"),
	})
	title := a.v.GetString("title")

	var link string
	if a.v.GetBool("reroute") {
		link = c.ComposeReroute(title, doc)
	} else if link, err = c.Compose(title, doc); err != nil {
		return err
	}

	a.logger.Debug("encoded", "bytes", len(doc), "link", len(link))
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func readDocument(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}
