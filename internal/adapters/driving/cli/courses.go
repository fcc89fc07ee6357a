package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var coursesJSON bool

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the indexed courses",
	RunE:  runCourses,
}

var coursesOutlineCmd = &cobra.Command{
	Use:   "outline [course]",
	Short: "Show a course's lessons and links",
	Long: `Prints the outline of one course: its link, instructor and complete
lesson list. Partial course names match the closest indexed title.`,
	Args: cobra.ExactArgs(1),
	RunE: runCoursesOutline,
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesJSON, "json", false, "output as JSON")
	coursesCmd.AddCommand(coursesOutlineCmd)
	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	analytics, err := assistantService.Analytics(context.Background())
	if err != nil {
		return fmt.Errorf("listing courses failed: %w", err)
	}

	if coursesJSON {
		data, err := json.MarshalIndent(analytics, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal analytics: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if analytics.TotalCourses == 0 {
		cmd.Println("No courses indexed. Run 'studium ingest' first.")
		return nil
	}

	cmd.Printf("%d courses indexed:\n", analytics.TotalCourses)
	for _, title := range analytics.CourseTitles {
		cmd.Printf("  - %s\n", title)
	}
	return nil
}

func runCoursesOutline(cmd *cobra.Command, args []string) error {
	if chunkStore == nil {
		return errors.New("chunk store not configured")
	}

	ctx := context.Background()
	title, ok := chunkStore.Resolver().ResolveCourseTitle(ctx, args[0])
	if !ok {
		return fmt.Errorf("no course found matching %q", args[0])
	}

	outline, err := chunkStore.CourseOutline(ctx, title)
	if err != nil {
		return fmt.Errorf("outline failed: %w", err)
	}

	cmd.Printf("Course: %s\n", outline.CourseTitle)
	if outline.CourseLink != "" {
		cmd.Printf("Link: %s\n", outline.CourseLink)
	}
	if outline.Instructor != "" {
		cmd.Printf("Instructor: %s\n", outline.Instructor)
	}
	cmd.Printf("\nLessons (%d):\n", len(outline.Lessons))
	for _, lesson := range outline.Lessons {
		cmd.Printf("  %d. %s\n", lesson.Number, lesson.Title)
	}
	return nil
}
