package models

import (
	"encoding/json"
	"time"
)

// Course — карточка курса в каталоге.
type Course struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	Author       string    `json:"author,omitempty"`
	Price        Decimal   `json:"price"`
	Rating       Decimal   `json:"rating"`
	LessonsCount int       `json:"lessons_count,omitempty"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Lesson — урок курса (теория + опциональный тест).
type Lesson struct {
	ID        int64  `json:"id"`
	CourseID  int64  `json:"course"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	VideoURL  string `json:"video_url,omitempty"`
	Order     int    `json:"order"`
	TestID    int64  `json:"test,omitempty"`
	Completed bool   `json:"is_completed,omitempty"`
}

// Test — тест (квиз) урока. Правильные ответы клиенту не приходят.
type Test struct {
	ID        int64      `json:"id"`
	LessonID  int64      `json:"lesson,omitempty"`
	Title     string     `json:"title"`
	TimeLimit int        `json:"time_limit,omitempty"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID       int64    `json:"id"`
	Text     string   `json:"text"`
	Multiple bool     `json:"multiple,omitempty"`
	Choices  []Choice `json:"choices"`
}

type Choice struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// Answer — выбор пользователя по одному вопросу.
type Answer struct {
	QuestionID int64   `json:"question"`
	ChoiceIDs  []int64 `json:"choices"`
}

// TestResult — ответ бэкенда на сдачу теста. Оценивание серверное,
// поэтому тело сохраняется как есть в Raw.
type TestResult struct {
	Score  Decimal         `json:"score"`
	Passed bool            `json:"passed"`
	Raw    json.RawMessage `json:"-"`
}

func (r *TestResult) UnmarshalJSON(b []byte) error {
	type plain TestResult
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	*r = TestResult(p)
	r.Raw = append(json.RawMessage(nil), b...)
	return nil
}
