package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jpl-au/hashlink"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <file>",
		Short: "Print the attempts recorded in a diagnostic log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printLog(cmd, args[0])
		},
	}
	cmd.Flags().Bool("failed", false, "only show failed attempts")
	a.bind(cmd.Flags(), "failed")
	return cmd
}

// entry is the YAML rendering of one attempt.
type entry struct {
	Time     string `yaml:"time"`
	Link     string `yaml:"link"`
	ID       string `yaml:"id"`
	Strategy string `yaml:"strategy"`
	Padding  *int   `yaml:"padding,omitempty"`
	Skip     *int   `yaml:"skip,omitempty"`
	Outcome  string `yaml:"outcome"`
	Error    string `yaml:"error,omitempty"`
	Version  string `yaml:"version,omitempty"`
}

func (a *app) printLog(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	attempts, err := hashlink.ReadAttempts(f)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	failedOnly := a.v.GetBool("failed")
	entries := make([]entry, 0, len(attempts))
	for _, at := range attempts {
		if failedOnly && !at.Failed() {
			continue
		}
		entries = append(entries, newEntry(at))
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(entries)
}

func newEntry(at hashlink.Attempt) entry {
	e := entry{
		Time:     time.UnixMilli(at.Timestamp).UTC().Format(time.RFC3339Nano),
		Link:     at.Hashlink,
		ID:       at.Fingerprint,
		Strategy: at.Strategy,
		Outcome:  at.Outcome,
		Error:    at.Error,
		Version:  at.Version,
	}
	if at.Padding >= 0 {
		e.Padding = &at.Padding
	}
	if at.Skip >= 0 {
		e.Skip = &at.Skip
	}
	return e
}
