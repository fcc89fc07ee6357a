package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studium-labs/studium-cli/internal/adapters/driving/watch"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Index course documents into the local store",
	Long: `Parses course scripts and stores their chunks in the vector index.

The path may be a single document or a folder. Folder ingestion skips
courses whose titles are already indexed, so it is safe to re-run.

With --watch the command keeps running and re-ingests the folder
whenever its files change.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the folder and re-ingest on changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	ctx := context.Background()

	if !info.IsDir() {
		if ingestWatch {
			return errors.New("--watch requires a folder")
		}
		course, chunks, err := ingestService.AddCourseDocument(ctx, path)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Indexed %q: %d lessons, %d chunks\n", course.Title, len(course.Lessons), chunks)
		return nil
	}

	courses, chunks, err := ingestService.AddCourseFolder(ctx, path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Indexed %d new courses (%d chunks)\n", courses, chunks)

	if !ingestWatch {
		return nil
	}

	cmd.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", path)
	watcher := watch.NewWatcher(ingestService, 0)
	if err := watcher.Run(cmd.Context(), path); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
