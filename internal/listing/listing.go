// listing — локальные фильтрация, сортировка и постраничная выдача
// уже загруженных списков (каталог курсов в CLI).
package listing

import (
	"cmp"
	"slices"
	"strings"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

// ParseDirection: "-title" -> ("title", Desc).
func ParseDirection(field string) (string, Direction) {
	if name, ok := strings.CutPrefix(field, "-"); ok {
		return name, Desc
	}
	return field, Asc
}

// Filter возвращает новый срез элементов, для которых keep == true.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// SortBy — стабильная сортировка копии по ключу.
func SortBy[T any, K cmp.Ordered](items []T, key func(T) K, dir Direction) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		c := cmp.Compare(key(a), key(b))
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Paginate отдаёт страницу page (с 1) размером size и общее число страниц.
// Страница за пределами диапазона пуста; size <= 0 — всё одной страницей.
func Paginate[T any](items []T, page, size int) ([]T, int) {
	if size <= 0 {
		size = len(items)
	}
	if size == 0 {
		return nil, 0
	}

	total := (len(items) + size - 1) / size
	if page < 1 || page > total {
		return nil, total
	}

	from := (page - 1) * size
	to := min(from+size, len(items))

	return items[from:to], total
}

// ContainsFold — регистронезависимый поиск подстроки.
func ContainsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
