// interceptors предоставляет middleware для исходящих HTTP-запросов клиента:
// метаданные, подстановку bearer-токена, single-flight обновление токена
// по 401, логирование и таймауты.
//
// Middleware не модифицируют входящий *http.Request: изменения заголовков
// делаются на клоне (r.Clone).
package interceptors

import "net/http"

// Middleware — обёртка над http.RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain применяет middleware в порядке перечисления: первый — самый внешний.
// nil-элементы пропускаются; nil rt заменяется на http.DefaultTransport.
func Chain(rt http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}

	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			rt = mws[i](rt)
		}
	}

	return rt
}
