package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/client"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/listing"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

// courseQuery — локальная выборка каталога.
type courseQuery struct {
	search   string
	category string
	sort     string
	page     int
	size     int
	my       bool
}

// selectCourses фильтрует, сортирует и режет каталог на страницы.
func selectCourses(all []models.Course, q courseQuery) ([]models.Course, int, error) {
	out := all
	if q.search != "" {
		out = listing.Filter(out, func(c models.Course) bool {
			return listing.ContainsFold(c.Title, q.search) || listing.ContainsFold(c.Description, q.search)
		})
	}

	if q.sort != "" {
		field, dir := listing.ParseDirection(q.sort)
		switch field {
		case "title":
			out = listing.SortBy(out, func(c models.Course) string { return strings.ToLower(c.Title) }, dir)
		case "price":
			out = listing.SortBy(out, func(c models.Course) float64 { return float64(c.Price) }, dir)
		case "rating":
			out = listing.SortBy(out, func(c models.Course) float64 { return float64(c.Rating) }, dir)
		default:
			return nil, 0, fmt.Errorf("unknown sort field %q (title, price, rating)", field)
		}
	}

	page, total := listing.Paginate(out, q.page, q.size)
	return page, total, nil
}

func coursesCmd(g *globalOptions) *cobra.Command {
	var q courseQuery

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List the course catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				var (
					all []models.Course
					err error
				)
				if q.my {
					all, err = a.client.EnrolledCourses(ctx)
				} else {
					all, err = a.client.AllCourses(ctx, client.CourseQuery{Search: q.search, Category: q.category})
				}
				if err != nil {
					return err
				}

				page, total, err := selectCourses(all, q)
				if err != nil {
					return err
				}

				w := newTable(cmd.OutOrStdout())
				row(w, "ID", "TITLE", "CATEGORY", "PRICE", "RATING", "LESSONS")
				for _, c := range page {
					row(w, c.ID, excerpt(c.Title, 40), c.Category, c.Price, c.Rating, c.LessonsCount)
				}
				if err := w.Flush(); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d courses\n", q.page, total, len(all))
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&q.search, "search", "s", "", "search in title and description")
	f.StringVar(&q.category, "category", "", "filter by category")
	f.StringVar(&q.sort, "sort", "", "sort by title|price|rating, prefix with - for descending")
	f.IntVar(&q.page, "page", 1, "page number")
	f.IntVar(&q.size, "size", 10, "page size")
	f.BoolVar(&q.my, "my", false, "only enrolled courses")

	return cmd
}

func courseCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "course <id>",
		Short: "Show a course and its lessons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				c, err := a.client.Course(ctx, id)
				if err != nil {
					return err
				}

				lessons, err := a.client.CourseLessons(ctx, id)
				if err != nil {
					return err
				}
				lessons = listing.SortBy(lessons, func(l models.Lesson) int { return l.Order }, listing.Asc)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n%s\n\n", c.Title, excerpt(c.Description, 200))

				w := newTable(out)
				row(w, "#", "LESSON", "TITLE", "DONE")
				for _, l := range lessons {
					row(w, l.Order, l.ID, excerpt(l.Title, 50), done(l.Completed))
				}
				return w.Flush()
			})
		},
	}
}

func lessonCmd(g *globalOptions) *cobra.Command {
	var complete bool

	cmd := &cobra.Command{
		Use:   "lesson <id>",
		Short: "Show lesson theory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				l, err := a.client.Lesson(ctx, id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n\n%s\n", l.Title, l.Content)
				if l.VideoURL != "" {
					fmt.Fprintf(out, "\nVideo: %s\n", l.VideoURL)
				}
				if l.TestID != 0 {
					fmt.Fprintf(out, "Test: brainboost test %d\n", l.TestID)
				}

				if complete {
					if err := a.client.CompleteLesson(ctx, id); err != nil {
						return err
					}
					fmt.Fprintln(out, "Marked as completed")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&complete, "complete", false, "mark the lesson as completed")

	return cmd
}

func testCmd(g *globalOptions) *cobra.Command {
	var answers string

	cmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Show a test or submit answers (--answers \"1=2,3;2=5\")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()

				if answers != "" {
					parsed, err := parseAnswers(answers)
					if err != nil {
						return err
					}

					res, err := a.client.SubmitTest(ctx, id, parsed)
					if err != nil {
						return err
					}

					fmt.Fprintf(out, "Score: %s, passed: %t\n", res.Score, res.Passed)
					return nil
				}

				t, err := a.client.Test(ctx, id)
				if err != nil {
					return err
				}

				fmt.Fprintln(out, t.Title)
				if t.TimeLimit > 0 {
					fmt.Fprintf(out, "Time limit: %d min\n", t.TimeLimit)
				}
				for _, q := range t.Questions {
					kind := "one"
					if q.Multiple {
						kind = "many"
					}
					fmt.Fprintf(out, "\n[%d] %s (%s)\n", q.ID, q.Text, kind)
					for _, c := range q.Choices {
						fmt.Fprintf(out, "    %d) %s\n", c.ID, c.Text)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&answers, "answers", "", "answers as question=choice[,choice];...")

	return cmd
}

// parseAnswers: "1=2,3;2=5" -> [{1 [2 3]} {2 [5]}].
func parseAnswers(s string) ([]models.Answer, error) {
	var out []models.Answer

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		q, choices, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid answer %q: want question=choice[,choice]", part)
		}

		qid, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid question id %q", q)
		}

		a := models.Answer{QuestionID: qid}
		for _, c := range strings.Split(choices, ",") {
			cid, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid choice id %q", c)
			}
			a.ChoiceIDs = append(a.ChoiceIDs, cid)
		}
		out = append(out, a)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no answers given")
	}

	return out, nil
}

func done(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
