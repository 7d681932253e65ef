package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Page — страница списка. Бэкенд отдаёт либо DRF-объект
// {count, next, previous, results}, либо голый массив; оба декодируются в Page.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}

// pageBody — Page без собственного UnmarshalJSON.
type pageBody[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}

		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	var v pageBody[T]
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*p = Page[T](v)
	return nil
}

// Decimal — число, которое DRF сериализует то строкой ("12.50"), то числом.
type Decimal float64

func (d *Decimal) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decimal %q: %w", s, err)
	}

	*d = Decimal(f)
	return nil
}

func (d Decimal) String() string { return strconv.FormatFloat(float64(d), 'f', 2, 64) }
