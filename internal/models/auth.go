// models содержит сущности BrainBoost, которыми обмениваются клиент и REST-бэкенд.
// JSON-теги повторяют имена полей Django REST Framework.
package models

// TokenPair — пара токенов сессии.
//
// Описание:
//   - Access — короткоживущий JWT для заголовка Authorization;
//   - Refresh — долгоживущий секрет для выпуска нового access;
//     пустая строка означает отсутствие refresh-токена (null).
type TokenPair struct {
	Access  string
	Refresh string
}

// Role — роль пользователя на платформе.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// User — профиль, который отдаёт /accounts/api/profile/.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      Role   `json:"role,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// DisplayName — имя для вывода: "Имя Фамилия" или username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}

	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
