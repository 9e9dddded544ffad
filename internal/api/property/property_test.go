package property

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatly/estatly/internal/client"
)

func TestListParams_Query(t *testing.T) {
	tests := []struct {
		name     string
		params   ListParams
		expected string
	}{
		{"empty", ListParams{}, ""},
		{"pagination", ListParams{Page: 2, Limit: 12}, "limit=12&page=2"},
		{"filters", ListParams{City: "Austin", Type: "house", MinPrice: 250000.5, Bedrooms: 3}, "bedrooms=3&city=Austin&minPrice=250000.5&type=house"},
		{"search escaped", ListParams{Search: "lake view"}, "search=lake+view"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.params.Query().Encode())
		})
	}
}

func TestList_DecodesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/properties", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"success":true,"data":{
			"properties":[{"id":"p1","title":"Loft","propertyStatus":"active","price":420000,"city":"Austin"}],
			"pagination":{"page":1,"limit":3,"total":1,"totalPages":1}}}`))
	}))
	defer srv.Close()

	res := New(client.New(srv.URL)).List(context.Background(), ListParams{Limit: 3})
	require.True(t, res.Success)
	require.Len(t, res.Data.Properties, 1)
	assert.Equal(t, StatusActive, res.Data.Properties[0].Status)
	assert.Equal(t, 1, res.Data.Pagination.Total)
}

func TestCRUD_PathsAndMethods(t *testing.T) {
	type call struct{ method, path string }
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.EscapedPath()})
		w.Write([]byte(`{"success":true,"data":{"id":"p/1"}}`))
	}))
	defer srv.Close()

	svc := New(client.New(srv.URL))
	ctx := context.Background()

	assert.True(t, svc.Get(ctx, "p/1").Success)
	assert.True(t, svc.Create(ctx, Input{Title: "Loft", Type: "condo", City: "Austin"}).Success)
	assert.True(t, svc.Update(ctx, "p/1", Input{Price: 1}).Success)
	assert.True(t, svc.Delete(ctx, "p/1").Success)

	assert.Equal(t, []call{
		{http.MethodGet, "/api/properties/p%2F1"},
		{http.MethodPost, "/api/properties"},
		{http.MethodPut, "/api/properties/p%2F1"},
		{http.MethodDelete, "/api/properties/p%2F1"},
	}, calls)
}

func TestGet_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Property not found"}`))
	}))
	defer srv.Close()

	res := New(client.New(srv.URL)).Get(context.Background(), "missing")
	assert.False(t, res.Success)
	assert.Equal(t, "Property not found", res.Message)
	assert.Empty(t, res.Data.ID)
}

func TestFeatured_FallbackOnGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`upstream unavailable`))
	}))
	defer srv.Close()

	res := New(client.New(srv.URL)).Featured(context.Background(), 6)
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to get featured properties", res.Message)
	assert.Nil(t, res.Data)
}
