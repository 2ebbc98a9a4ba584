package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	archive "github.com/entisia/go-noa/internal/noa"
	"github.com/entisia/go-noa/internal/report"
	"github.com/entisia/go-noa/internal/settings"
	"github.com/entisia/go-noa/pkg/noa"
)

var version = "dev"

type rootOptions struct {
	password    string
	scheme      string
	blockKeyHex string
	pattern     string
	outputDir   string
	longList    bool
	quiet       bool
	selfUpdate  bool
}

var opts rootOptions

var rootCmd = &cobra.Command{
	Use:           "noa <archive>",
	Short:         "List and extract Entis NOA archives.",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runList,
}

var extractCmd = &cobra.Command{
	Use:     "extract <archive>",
	Aliases: []string{"x"},
	Short:   "Extract entries to a directory",
	Args:    cobra.ExactArgs(1),
	RunE:    runExtract,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update noa",
	Long:  "Update noa to latest version (release builds only).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelfUpdate(cmd.Context())
	},
	DisableFlagsInUseLine: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "noa version: %s\n", version)
		return nil
	},
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().StringVarP(&opts.password, "password", "p", "", "Password for protected entries (looked up by archive name when omitted)")
	rootCmd.PersistentFlags().StringVar(&opts.scheme, "scheme", string(settings.SchemeAuto), "Payload handling: auto, raw or block")
	rootCmd.PersistentFlags().StringVar(&opts.blockKeyHex, "block-key", "", "Hex key for the block-cipher scheme")
	rootCmd.PersistentFlags().StringVar(&opts.pattern, "pattern", "", "Only include entries matching this glob")

	rootCmd.Flags().BoolVarP(&opts.longList, "long", "l", false, "Long listing with type, size and encryption columns")

	extractCmd.Flags().StringVarP(&opts.outputDir, "output", "o", ".", "Output directory")
	extractCmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress per-file progress output")

	rootCmd.PersistentFlags().BoolVar(&opts.selfUpdate, "self-update", false, "Update noa to latest version (release builds only)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "noa: %s\n", err.Error())
		os.Exit(1)
	}
}

// buildSettings validates the shared flags against the archive path.
func buildSettings(path string) (settings.Settings, error) {
	s := settings.Default()
	s.Pattern = opts.pattern
	s.LongList = opts.longList
	s.OutputDir = opts.outputDir
	s.Scheme = settings.Scheme(opts.scheme)
	if !s.Scheme.Valid() {
		return s, fmt.Errorf("unknown scheme %q (want auto, raw or block)", opts.scheme)
	}

	key, err := parseBlockKey(opts.blockKeyHex)
	if err != nil {
		return s, err
	}
	s.BlockKey = key
	if s.Scheme == settings.SchemeBlock && len(s.BlockKey) == 0 {
		return s, errors.New("--scheme=block requires --block-key")
	}

	s.Password = opts.password
	if s.Password == "" && s.Scheme == settings.SchemeAuto {
		if pw, ok := settings.ResolvePassword(path); ok {
			s.Password = pw
		}
	}
	return s, nil
}

// parseBlockKey decodes a hex block key, tolerating an 0x prefix.
func parseBlockKey(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("block key is not valid hex: %w", err)
	}
	return key, nil
}

func runList(cmd *cobra.Command, args []string) error {
	if opts.selfUpdate {
		return runSelfUpdate(cmd.Context())
	}

	path := args[0]
	s, err := buildSettings(path)
	if err != nil {
		return err
	}

	a, err := archive.Open(path, archiveOptions(s))
	if err != nil {
		return err
	}
	defer a.Close()

	return report.WriteListing(cmd.OutOrStdout(), path, a, s)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	s, err := buildSettings(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	options := noa.Options{
		Path:        path,
		Password:    s.Password,
		Pattern:     s.Pattern,
		OutputDir:   s.OutputDir,
		RawPayloads: s.Scheme == settings.SchemeRaw,
	}
	if s.Scheme == settings.SchemeBlock {
		options.BlockKey = s.BlockKey
	}
	if !opts.quiet {
		options.OnProgress = func(e noa.ProgressEvent) {
			if e.Stage == noa.StageExtracting {
				fmt.Fprintf(out, "%s (%d bytes)\n", e.Entry, e.Bytes)
			}
		}
	}

	res, err := noa.Extract(cmd.Context(), options)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Extracted %d entries (%s) to %s\n", res.Extracted, res.Summary, s.OutputDir)
	return nil
}

func runSelfUpdate(ctx context.Context) error {
	if version == "" || version == "dev" {
		return errors.New("self-update is only available in release builds")
	}

	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("could not parse version: %w", err)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug("entisia/go-noa"))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s/%s could not be found from github repository", "entisia/go-noa", version)
	}

	if latest.LessOrEqual(version) {
		fmt.Printf("Current binary is the latest version: %s\n", version)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Printf("Successfully updated to version: %s\n", latest.Version())
	return nil
}

func archiveOptions(s settings.Settings) archive.Options {
	o := archive.Options{Password: s.Password, BlockKey: s.BlockKey}
	switch s.Scheme {
	case settings.SchemeRaw:
		o.Password = ""
		o.BlockKey = nil
	case settings.SchemeAuto:
		o.BlockKey = nil
	}
	return o
}
