package main

import (
	"fmt"
	"path/filepath"

	"github.com/jpl-au/hashlink"
	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <hashlink>",
		Short: "Recover the document carried by a hashlink",
		Long: `Run the decode cascade on a hashlink and print the recovered document.
The label of the strategy that succeeded is written to stderr.

With --log, every attempt is appended to a diagnostic log file which can
be inspected later with "hashlink log".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.decode(cmd, args[0])
		},
	}

	f := cmd.Flags()
	f.String("log", "", "append attempt records to this file")
	f.Bool("fresh-log", false, "clear the log file before decoding")
	f.Bool("offline", false, "never fall back to fetching the link")
	f.Duration("timeout", hashlink.DefaultTimeout, "network fallback timeout")
	f.String("hash", "xxh3", "fingerprint algorithm: xxh3, fnv1a or blake2b")
	f.String("format", formatHTML, "output format: html, markdown or text")
	f.Bool("sanitize", false, "strip scripts and unsafe markup before output")
	a.bind(f, "log", "fresh-log", "offline", "timeout", "hash", "format", "sanitize")

	return cmd
}

func (a *app) decode(cmd *cobra.Command, link string) error {
	format := a.v.GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	alg, err := hashAlgorithm(a.v.GetString("hash"))
	if err != nil {
		return err
	}

	cfg := hashlink.Config{
		Timeout:       a.v.GetDuration("timeout"),
		HashAlgorithm: alg,
		Offline:       a.v.GetBool("offline"),
		Logger:        a.logger,
	}
	if path := a.v.GetString("log"); path != "" {
		sink, err := hashlink.OpenSink(filepath.Dir(path), filepath.Base(path), hashlink.SinkConfig{
			HashAlgorithm: alg,
			Truncate:      a.v.GetBool("fresh-log"),
		})
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer sink.Close()
		cfg.Sink = sink
	}

	doc, err := hashlink.NewDecoder(cfg).Decode(cmd.Context(), link)
	if err != nil {
		return err
	}

	out, err := render(doc.HTML, format, a.v.GetBool("sanitize"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "version:", doc.Version)
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func hashAlgorithm(name string) (int, error) {
	switch name {
	case "", "xxh3":
		return hashlink.AlgXXHash3, nil
	case "fnv1a":
		return hashlink.AlgFNV1a, nil
	case "blake2b":
		return hashlink.AlgBlake2b, nil
	}
	return 0, fmt.Errorf("unknown hash algorithm %q", name)
}
