package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driven/watch"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

var docsFilter string

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"documents"},
	Short:   "Manage documents known to the backend",
	Long: `List, upload and open the documents answers are grounded in.

Use subcommands to list documents, upload files or watch a directory.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload files",
	Long: `Upload one or more files. Paths may be glob patterns such as
'reports/**/*.pdf'. Files over the configured size ceiling are rejected
before anything is sent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocsUpload,
}

var docsWatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Upload files as they appear in a directory",
	Long: `Watch a directory tree and upload files matching the configured
upload patterns when they are created or written. Changes are batched
for a short quiet period before each upload. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsWatch,
}

var docsOpenCmd = &cobra.Command{
	Use:   "open <name>",
	Short: "Open a document in the browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsOpen,
}

func init() {
	docsListCmd.Flags().StringVarP(&docsFilter, "filter", "f", "", "only show documents whose name contains this text")
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsUploadCmd)
	docsCmd.AddCommand(docsWatchCmd)
	docsCmd.AddCommand(docsOpenCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if documentCoord == nil {
		return errNotConfigured("document coordinator")
	}

	if err := documentCoord.Refresh(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	docs := documentCoord.Filter(docsFilter)
	if len(docs) == 0 {
		if docsFilter != "" {
			cmd.Printf("No documents match %q.\n", docsFilter)
		} else {
			cmd.Println("No documents uploaded yet.")
			cmd.Println("Run 'omniq docs upload <path>' to add one.")
		}
		return nil
	}

	cmd.Printf("%-40s %-12s %10s  %s\n", "NAME", "STATUS", "SIZE", "MODIFIED")
	for _, d := range docs {
		modified := "-"
		if d.LastModified != nil {
			modified = humanize.Time(*d.LastModified)
		}
		cmd.Printf("%-40s %-12s %10s  %s\n",
			truncateName(d.Name, 40), d.Status, humanize.Bytes(uint64(max(d.Size, 0))), modified)
	}
	cmd.Printf("\n%d documents\n", len(docs))
	return nil
}

func runDocsUpload(cmd *cobra.Command, args []string) error {
	if documentCoord == nil {
		return errNotConfigured("document coordinator")
	}
	if fileSource == nil {
		return errNotConfigured("file source")
	}

	paths, err := watch.Expand(args)
	if err != nil {
		return err
	}

	files, closers, err := openFiles(paths)
	defer closeAll(closers)
	if err != nil {
		return err
	}

	for _, f := range files {
		cmd.Printf("Uploading %s (%s)\n", f.Name, humanize.Bytes(uint64(max(f.Size, 0))))
	}

	result, err := documentCoord.SubmitUpload(commandContext(cmd), files)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if result == nil || !result.IsSuccessful {
		msg := domain.UploadFailedMessage
		if result != nil && result.Error != "" {
			msg = result.Error
		}
		return errors.New(msg)
	}
	return nil
}

func runDocsWatch(cmd *cobra.Command, args []string) error {
	if uploadScheduler == nil {
		return errNotConfigured("upload scheduler")
	}

	dir := args[0]
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	err := uploadScheduler.Start(commandContext(cmd), dir)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	history := uploadScheduler.History()
	uploaded := 0
	for _, r := range history {
		if r.Succeeded() {
			uploaded += len(r.Result.UploadedFiles)
		}
	}
	cmd.Printf("Stopped. %d batches, %d files uploaded.\n", len(history), uploaded)
	return nil
}

func runDocsOpen(cmd *cobra.Command, args []string) error {
	if documentCoord == nil {
		return errNotConfigured("document coordinator")
	}

	ctx := commandContext(cmd)
	if err := documentCoord.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if err := documentCoord.OpenDocument(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	cmd.Printf("Opened %s\n", args[0])
	return nil
}

// openFiles opens every path through the file source. Closers of files
// opened before a failure are still returned.
func openFiles(paths []string) ([]domain.UploadFile, []io.Closer, error) {
	files := make([]domain.UploadFile, 0, len(paths))
	closers := make([]io.Closer, 0, len(paths))
	for _, p := range paths {
		f, c, err := fileSource.Open(p)
		if err != nil {
			return nil, closers, fmt.Errorf("open %s: %w", p, err)
		}
		files = append(files, f)
		closers = append(closers, c)
	}
	return files, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func truncateName(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
