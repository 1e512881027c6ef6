package catalogapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

func Test_NewClient_Construction(t *testing.T) {
	// act
	client, err := catalogapi.NewClient("http://localhost:8080")

	// assert
	require.NoError(t, err, "creating the client should succeed")
	assert.NotNil(t, client)
}

func Test_NewClient_WithEmptyBaseURL(t *testing.T) {
	// act
	client, err := catalogapi.NewClient("")

	// assert
	assert.ErrorIs(t, err, catalogapi.ErrEmptyBaseURL)
	assert.Nil(t, client)
}

func Test_NewClient_WithNilHTTPClient(t *testing.T) {
	// act
	client, err := catalogapi.NewClient("http://localhost:8080", catalogapi.WithHTTPClient(nil))

	// assert
	assert.ErrorIs(t, err, catalogapi.ErrNilHTTPClient)
	assert.Nil(t, client)
}

func Test_Client_FetchPopularTitles(t *testing.T) {
	// arrange
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"titles": [
			{"id": "0198c5d2-7a11-7c2a-9e00-00000000000a", "name": "Dune", "overview": "Desert planet.", "rating": 7.9, "release_year": 2024},
			{"id": "0198c5d2-7a11-7c2a-9e00-0123456789ab", "name": "Aurora", "overview": "A story.", "rating": 8.1, "release_year": 2021}
		]}`))
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL)
	require.NoError(t, err)

	// act
	list, fetchErr := client.FetchPopularTitles(context.Background())

	// assert
	require.NoError(t, fetchErr, "the fetch should succeed")
	assert.Equal(t, "/titles/popular", requestedPath)
	require.Len(t, list.Titles, 2)
	assert.Equal(t, "Aurora", list.Titles[1].Name)
	assert.InDelta(t, 8.1, list.Titles[1].Rating, 0.001)
	assert.Equal(t, uint(2021), list.Titles[1].ReleaseYear)
}

func Test_Client_FetchTitleDetails(t *testing.T) {
	// arrange
	titleID := uuid.New()

	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "` + titleID.String() + `", "name": "Aurora", "overview": "A story.", "rating": 8.1, "release_year": 2021}`))
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL)
	require.NoError(t, err)

	// act
	record, fetchErr := client.FetchTitleDetails(context.Background(), titleID)

	// assert
	require.NoError(t, fetchErr)
	assert.Equal(t, "/titles/"+titleID.String(), requestedPath, "the title id should be part of the path")
	assert.Equal(t, titleID.String(), record.ID)
	assert.Equal(t, "Aurora", record.Name)
}

func Test_Client_SearchTitles_EscapesTheSearchText(t *testing.T) {
	// arrange
	var receivedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"titles": []}`))
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL)
	require.NoError(t, err)

	// act
	list, fetchErr := client.SearchTitles(context.Background(), "space & time")

	// assert
	require.NoError(t, fetchErr)
	assert.Equal(t, "space & time", receivedQuery, "the search text should survive URL escaping")
	assert.Empty(t, list.Titles)
}

func Test_Client_FetchGenres(t *testing.T) {
	// arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/genres", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"genres": [{"id": "g-1", "name": "Drama"}, {"id": "g-2", "name": "Sci-Fi"}]}`))
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL)
	require.NoError(t, err)

	// act
	list, fetchErr := client.FetchGenres(context.Background())

	// assert
	require.NoError(t, fetchErr)
	require.Len(t, list.Genres, 2)
	assert.Equal(t, "Drama", list.Genres[0].Name)
}

func Test_Client_RetriesTransientFailures(t *testing.T) {
	// arrange
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"titles": []}`))
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL,
		catalogapi.WithMaxRetries(3),
		catalogapi.WithRetryIntervals(time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	// act
	_, fetchErr := client.FetchPopularTitles(context.Background())

	// assert
	require.NoError(t, fetchErr, "the fetch should succeed after retries")
	assert.Equal(t, int32(3), attempts.Load(), "two failed attempts plus the successful one")
}

func Test_Client_GivesUpAfterMaxRetries(t *testing.T) {
	// arrange
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL,
		catalogapi.WithMaxRetries(2),
		catalogapi.WithRetryIntervals(time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	// act
	_, fetchErr := client.FetchPopularTitles(context.Background())

	// assert
	require.Error(t, fetchErr)
	assert.ErrorIs(t, fetchErr, datalayer.ErrRemoteFetchFailed, "the failure should classify as a fetch failure")
	assert.Equal(t, int32(3), attempts.Load(), "the first attempt plus two retries")
}

func Test_Client_DoesNotRetryClientErrors(t *testing.T) {
	// arrange
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL,
		catalogapi.WithMaxRetries(3),
		catalogapi.WithRetryIntervals(time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	// act
	_, fetchErr := client.FetchTitleDetails(context.Background(), uuid.New())

	// assert
	require.Error(t, fetchErr)
	assert.ErrorIs(t, fetchErr, datalayer.ErrRemoteFetchFailed)
	assert.Equal(t, int32(1), attempts.Load(), "a 4xx response should not be retried")
}

func Test_Client_DoesNotRetryUndecodableBodies(t *testing.T) {
	// arrange
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"titles": [`))
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL,
		catalogapi.WithMaxRetries(3),
		catalogapi.WithRetryIntervals(time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	// act
	_, fetchErr := client.FetchPopularTitles(context.Background())

	// assert
	require.Error(t, fetchErr)
	assert.ErrorIs(t, fetchErr, datalayer.ErrMappingFailed, "a broken payload should classify as a mapping failure")
	assert.Equal(t, int32(1), attempts.Load(), "an undecodable body should not be retried")
}

func Test_Client_RespectsContextCancellation(t *testing.T) {
	// arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := catalogapi.NewClient(server.URL,
		catalogapi.WithMaxRetries(100),
		catalogapi.WithRetryIntervals(10*time.Millisecond, 50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// act
	started := time.Now()
	_, fetchErr := client.FetchPopularTitles(ctx)

	// assert
	require.Error(t, fetchErr, "the fetch should give up when the context ends")
	assert.Less(t, time.Since(started), 2*time.Second, "cancellation should stop the retry loop early")
}
