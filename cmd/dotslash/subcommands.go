package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"

	"github.com/facebook/dotslash/artifact"
	"github.com/facebook/dotslash/cache"
	"github.com/facebook/dotslash/fetch"
	"github.com/facebook/dotslash/internal/fsutil"
	"github.com/facebook/dotslash/locate"
	"github.com/facebook/dotslash/provider"
)

// buildRoot constructs the cobra command tree for the
// "dotslash -- <subcommand> [args...]" form (spec.md §6). cobra is this
// retrieval pack's CLI library of choice (nabbar-golib's go.mod depends on
// it) for exactly this kind of named-subcommand-with-flags surface.
func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "dotslash",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		helpSubcommand(),
		versionSubcommand(),
		parseSubcommand(),
		fetchSubcommand(),
		b3sumSubcommand(),
		sha256Subcommand(),
		cleanSubcommand(),
		cacheDirSubcommand(),
		createURLEntrySubcommand(),
	)
	return root
}

// runSubcommand dispatches args through the cobra command tree and converts
// the result to an exit code.
func runSubcommand(args []string) int {
	root := buildRoot()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		printErrorChain(err)
		return 1
	}
	return 0
}

func helpSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Print usage information",
		RunE: func(cmd *cobra.Command, args []string) error {
			printHelp(cmd.OutOrStdout())
			return nil
		},
	}
}

func versionSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the launcher's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion(cmd.OutOrStdout())
			return nil
		},
	}
}

func parseSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <dotslash-file>",
		Short: "Parse a DotSlash file and print the entry resolved for this platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			c, err := cache.New()
			if err != nil {
				return err
			}
			result, err := locate.Locate(raw, c)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Entry)
		},
	}
}

func fetchSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <dotslash-file>",
		Short: "Fetch a DotSlash file's artifact without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			c, err := cache.New()
			if err != nil {
				return err
			}
			result, err := locate.Locate(raw, c)
			if err != nil {
				return err
			}
			if err := fetch.Download(context.Background(), result.Entry, result.Location, provider.NewDefaultFactory()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Location.Executable)
			return nil
		},
	}
}

func b3sumSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "b3sum <file>",
		Short: "Print the BLAKE3 digest of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDigest(cmd, args[0], blake3.New())
		},
	}
}

func sha256Subcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sha256 <file>",
		Short: "Print the SHA-256 digest of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDigest(cmd, args[0], sha256.New())
		},
	}
}

func printDigest(cmd *cobra.Command, path string, h hash.Hash) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%x\n", h.Sum(nil))
	return nil
}

func cleanSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the entire DotSlash cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cache.New()
			if err != nil {
				return err
			}
			// Published readonly artifacts are sealed (fetch.Download chmods
			// them 0o555 and clears the write bit on every entry underneath),
			// so RemoveAll would hit EACCES unlinking them unless the tree is
			// made writable first.
			if err := fsutil.MakeTreeEntriesWritable(c.Dir()); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("clean %s: %w", c.Dir(), err)
			}
			if err := os.RemoveAll(c.Dir()); err != nil {
				return fmt.Errorf("clean %s: %w", c.Dir(), err)
			}
			return nil
		},
	}
}

func cacheDirSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cache-dir",
		Short: "Print the resolved cache root directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cache.New()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
			return nil
		},
	}
}

// urlEntrySkeleton is the ArtifactEntry JSON fragment create-url-entry
// emits: just enough for the author to add a format/arg0/readonly
// override by hand, grounded in original_source/src/print_entry_for_url.rs.
type urlEntrySkeleton struct {
	Size      uint64                    `json:"size"`
	Hash      string                    `json:"hash"`
	Digest    string                    `json:"digest"`
	Format    string                    `json:"format"`
	Path      string                    `json:"path"`
	Providers []urlEntrySkeletonProvider `json:"providers"`
}

type urlEntrySkeletonProvider struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func createURLEntrySubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-url-entry <url>",
		Short: "Fetch a URL once and print a skeleton ArtifactEntry for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			entry, err := createURLEntry(cmd.Context(), url)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entry)
		},
	}
}

func createURLEntry(ctx context.Context, url string) (urlEntrySkeleton, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return urlEntrySkeleton{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return urlEntrySkeleton{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return urlEntrySkeleton{}, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	h := blake3.New()
	size, err := io.Copy(h, resp.Body)
	if err != nil {
		return urlEntrySkeleton{}, fmt.Errorf("read response body from %s: %w", url, err)
	}

	name := path.Base(url)
	if _, pathErr := artifact.NewPath(name); pathErr != nil {
		name = "artifact"
	}

	return urlEntrySkeleton{
		Size:   uint64(size),
		Hash:   "blake3",
		Digest: fmt.Sprintf("%x", h.Sum(nil)),
		Format: "plain",
		Path:   name,
		Providers: []urlEntrySkeletonProvider{
			{Type: "http", URL: url},
		},
	}, nil
}
