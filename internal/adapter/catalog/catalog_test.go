package catalog

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
	{
		"id": 1,
		"title": "Fjallraven - Foldsack No. 1 Backpack",
		"price": 109.95,
		"description": "Your perfect pack for everyday use",
		"category": "men's clothing",
		"image": "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
		"rating": {"rate": 3.9, "count": 120}
	},
	{
		"id": 2,
		"title": "Mens Casual Premium Slim Fit T-Shirts",
		"price": 22.3,
		"description": "Slim-fitting style",
		"category": "men's clothing",
		"image": "https://fakestoreapi.com/img/71-3HjGNDUL._AC_SY879._SX._UX._SY._UY_.jpg"
	}
]`

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		},
	))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetchCatalog(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, productsJSON)

		ps, err := New(srv.URL).FetchCatalog(t.Context())
		require.NoError(t, err)
		require.Len(t, ps, 2)

		assert.Equal(t, domain.Product{
			ID:          "1",
			Title:       "Fjallraven - Foldsack No. 1 Backpack",
			Price:       109.95,
			Description: "Your perfect pack for everyday use",
			Image:       "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
		}, ps[0])
		assert.Equal(t, "2", ps[1].ID)
		assert.Equal(t, 22.3, ps[1].Price)
	})

	t.Run("EmptyArray", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[]`)

		ps, err := New(srv.URL).FetchCatalog(t.Context())
		require.NoError(t, err)
		assert.Empty(t, ps)
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := newServer(t, http.StatusNotFound, `{"message":"not found"}`)

		_, err := New(srv.URL).FetchCatalog(t.Context())
		require.Error(t, err)

		var netErr *domain.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, http.StatusNotFound, netErr.StatusCode)
		assert.Equal(t, "Not Found", netErr.Status)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[{"id": 1, "title": `)

		_, err := New(srv.URL).FetchCatalog(t.Context())

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("TrailingGarbage", func(t *testing.T) {
		srv := newServer(t, http.StatusOK,
			`[{"id": 1, "title": "Ring", "price": 1, "image": "https://img/1.jpg"}] <html>oops`)

		ps, err := New(srv.URL).FetchCatalog(t.Context())
		assert.Nil(t, ps)

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("OpaqueIDs", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[
			{"id": "sku-abc", "title": "Ring", "price": 1, "image": "https://img/1.jpg"},
			{"id": "3f2b1c9e-5d7a-4e1f-9b0c-2a6d8e4f1a37", "title": "Cap", "price": 2, "image": "https://img/2.jpg"},
			{"id": 12.5, "title": "Mug", "price": 3, "image": "https://img/3.jpg"}
		]`)

		for _, validate := range []bool{true, false} {
			ps, err := New(srv.URL, ValidateShapeOpt(validate)).FetchCatalog(t.Context())
			require.NoError(t, err)
			require.Len(t, ps, 3)
			assert.Equal(t, "sku-abc", ps[0].ID)
			assert.Equal(t, "3f2b1c9e-5d7a-4e1f-9b0c-2a6d8e4f1a37", ps[1].ID)
			assert.Equal(t, "12.5", ps[2].ID)
		}
	})

	t.Run("MissingIDWithoutValidation", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[{"id": null, "title": "Ring"}, {"title": "Cap"}]`)

		ps, err := New(srv.URL, ValidateShapeOpt(false)).FetchCatalog(t.Context())
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Empty(t, ps[0].ID)
		assert.Empty(t, ps[1].ID)
	})

	t.Run("NullIDWithValidation", func(t *testing.T) {
		srv := newServer(t, http.StatusOK,
			`[{"id": null, "title": "Ring", "price": 1, "image": "https://img/1.jpg"}]`)

		_, err := New(srv.URL).FetchCatalog(t.Context())

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("BodyTooLarge", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, productsJSON)

		_, err := New(srv.URL, MaxBodyBytesOpt(64)).FetchCatalog(t.Context())

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.ErrorIs(t, err, errBodyTooLarge)
	})

	t.Run("BodyAtLimit", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, productsJSON)

		ps, err := New(srv.URL, MaxBodyBytesOpt(int64(len(productsJSON)))).
			FetchCatalog(t.Context())
		require.NoError(t, err)
		assert.Len(t, ps, 2)
	})

	t.Run("NotArray", func(t *testing.T) {
		for _, body := range []string{`null`, `{"id": 1}`, `"products"`} {
			srv := newServer(t, http.StatusOK, body)

			_, err := New(srv.URL).FetchCatalog(t.Context())

			var parseErr *domain.ParseError
			assert.ErrorAs(t, err, &parseErr, body)
		}
	})

	t.Run("InvalidShape", func(t *testing.T) {
		srv := newServer(t, http.StatusOK,
			`[{"id": 1, "title": "", "price": 10, "image": "https://img/1.jpg"}]`)

		_, err := New(srv.URL).FetchCatalog(t.Context())

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, err.Error(), "product 0")
	})

	t.Run("MissingPrice", func(t *testing.T) {
		srv := newServer(t, http.StatusOK,
			`[{"id": 1, "title": "Ring", "image": "https://img/1.jpg"}]`)

		_, err := New(srv.URL).FetchCatalog(t.Context())

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("ShapeValidationDisabled", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[{"id": 7, "title": ""}]`)

		ps, err := New(srv.URL, ValidateShapeOpt(false)).FetchCatalog(t.Context())
		require.NoError(t, err)
		require.Len(t, ps, 1)
		assert.Equal(t, "7", ps[0].ID)
		assert.Zero(t, ps[0].Price)
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[]`)
		url := srv.URL
		srv.Close()

		_, err := New(url).FetchCatalog(t.Context())

		var netErr *domain.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Zero(t, netErr.StatusCode)
		assert.Error(t, netErr.Err)
	})
}

func TestClientRetry(t *testing.T) {
	t.Run("SingleAttemptByDefault", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		))
		defer srv.Close()

		_, err := New(srv.URL).FetchCatalog(t.Context())
		require.Error(t, err)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) < 3 {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				_, _ = w.Write([]byte(productsJSON))
			},
		))
		defer srv.Close()

		c := New(srv.URL, RetryOpt(3, time.Millisecond))
		ps, err := c.FetchCatalog(t.Context())
		require.NoError(t, err)
		assert.Len(t, ps, 2)
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("NoRetryOnClientErrors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusNotFound)
			},
		))
		defer srv.Close()

		c := New(srv.URL, RetryOpt(3, time.Millisecond))
		_, err := c.FetchCatalog(t.Context())
		require.Error(t, err)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("NoRetryOnParseErrors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				_, _ = w.Write([]byte(`not json`))
			},
		))
		defer srv.Close()

		c := New(srv.URL, RetryOpt(3, time.Millisecond))
		_, err := c.FetchCatalog(t.Context())

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.EqualValues(t, 1, calls.Load())
	})
}
