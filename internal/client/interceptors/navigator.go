package interceptors

// Navigator — клиентская навигация (аналог смены страницы в UI).
// Refresher уводит на страницу входа после необратимого провала refresh.
//
//go:generate mockgen -source=navigator.go -destination=../../../mocks/navigator.go -package=mocks
type Navigator interface {
	// Location — текущий маршрут.
	Location() string
	// Redirect переходит на path.
	Redirect(path string)
}
