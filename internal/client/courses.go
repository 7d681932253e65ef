package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

// CourseQuery — серверные фильтры каталога. Пустые поля не передаются.
type CourseQuery struct {
	Search   string
	Category string
	Ordering string
	Page     int
}

func (q CourseQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Ordering != "" {
		v.Set("ordering", q.Ordering)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}

	if len(v) == 0 {
		return ""
	}

	return "?" + v.Encode()
}

// ListCourses — одна страница каталога.
func (c *Client) ListCourses(ctx context.Context, q CourseQuery) (models.Page[models.Course], error) {
	const op = "client.ListCourses"

	var p models.Page[models.Course]
	if err := c.Do(ctx, http.MethodGet, c.endpoints.Courses+q.encode(), nil, &p); err != nil {
		return p, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// AllCourses — весь каталог по фильтрам (все страницы).
func (c *Client) AllCourses(ctx context.Context, q CourseQuery) ([]models.Course, error) {
	q.Page = 0
	return ListAll[models.Course](ctx, c, c.endpoints.Courses+q.encode())
}

func (c *Client) Course(ctx context.Context, id int64) (*models.Course, error) {
	const op = "client.Course"

	var out models.Course
	if err := c.Do(ctx, http.MethodGet, resource(c.endpoints.Courses, id), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) CourseLessons(ctx context.Context, courseID int64) ([]models.Lesson, error) {
	return ListAll[models.Lesson](ctx, c, resource(c.endpoints.Courses, courseID, "lessons"))
}

// EnrolledCourses — курсы текущего пользователя.
func (c *Client) EnrolledCourses(ctx context.Context) ([]models.Course, error) {
	return ListAll[models.Course](ctx, c, c.endpoints.MyCourses)
}
