package main

import (
	"context"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

// catalogServer is a tiny in-process catalog API serving a fixed set of
// movies, so the demo runs without any external catalog service. It counts
// the requests per endpoint, which lets the walkthrough show when the
// pipeline did or did not go remote.
type catalogServer struct {
	server   *http.Server
	listener net.Listener

	titles []catalogapi.TitleRecord
	genres []catalogapi.GenreRecord

	popularHits atomic.Int64
	detailsHits atomic.Int64
	searchHits  atomic.Int64
	genreHits   atomic.Int64
}

func startCatalogServer() (*catalogServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &catalogServer{
		listener: listener,
		titles:   demoTitles(),
		genres:   demoGenres(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /titles/popular", s.handlePopularTitles)
	mux.HandleFunc("GET /titles/search", s.handleSearchTitles)
	mux.HandleFunc("GET /titles/{id}", s.handleTitleDetails)
	mux.HandleFunc("GET /genres", s.handleGenres)

	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		_ = s.server.Serve(listener)
	}()

	return s, nil
}

// BaseURL returns the address the demo's catalog API client should talk to.
func (s *catalogServer) BaseURL() string {
	return "http://" + s.listener.Addr().String()
}

// Close stops the catalog API. Requests arriving afterwards fail with a
// connection error, exactly like an unreachable real service.
func (s *catalogServer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = s.server.Shutdown(ctx)
}

func (s *catalogServer) handlePopularTitles(w http.ResponseWriter, _ *http.Request) {
	s.popularHits.Add(1)

	popular := make([]catalogapi.TitleRecord, len(s.titles))
	copy(popular, s.titles)
	sort.Slice(popular, func(i, j int) bool { return popular[i].Rating > popular[j].Rating })

	writeJSON(w, catalogapi.TitleRecordList{Titles: popular})
}

func (s *catalogServer) handleTitleDetails(w http.ResponseWriter, r *http.Request) {
	s.detailsHits.Add(1)

	for _, title := range s.titles {
		if title.ID == r.PathValue("id") {
			writeJSON(w, title)
			return
		}
	}

	http.NotFound(w, r)
}

func (s *catalogServer) handleSearchTitles(w http.ResponseWriter, r *http.Request) {
	s.searchHits.Add(1)

	searchText := strings.ToLower(r.URL.Query().Get("query"))

	var matches []catalogapi.TitleRecord
	for _, title := range s.titles {
		if strings.Contains(strings.ToLower(title.Name), searchText) {
			matches = append(matches, title)
		}
	}

	writeJSON(w, catalogapi.TitleRecordList{Titles: matches})
}

func (s *catalogServer) handleGenres(w http.ResponseWriter, _ *http.Request) {
	s.genreHits.Add(1)

	writeJSON(w, catalogapi.GenreRecordList{Genres: s.genres})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := jsoniter.ConfigFastest.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func demoTitles() []catalogapi.TitleRecord {
	return []catalogapi.TitleRecord{
		{
			ID:          uuid.NewString(),
			Name:        "Dune: Part Two",
			Overview:    "Paul Atreides unites with the Fremen while seeking revenge against the conspirators who destroyed his family.",
			Rating:      8.4,
			ReleaseYear: 2024,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Spirited Away",
			Overview:    "A young girl wanders into a world ruled by spirits and must work in a bathhouse to free herself and her parents.",
			Rating:      8.6,
			ReleaseYear: 2001,
		},
		{
			ID:          uuid.NewString(),
			Name:        "The Matrix",
			Overview:    "A computer hacker learns the true nature of his reality and his role in the war against its controllers.",
			Rating:      8.7,
			ReleaseYear: 1999,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Oppenheimer",
			Overview:    "The story of the physicist who led the development of the atomic bomb during World War II.",
			Rating:      8.3,
			ReleaseYear: 2023,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Paddington 2",
			Overview:    "Paddington picks up a series of odd jobs to buy the perfect present, only for the gift to be stolen.",
			Rating:      7.8,
			ReleaseYear: 2017,
		},
	}
}

func demoGenres() []catalogapi.GenreRecord {
	return []catalogapi.GenreRecord{
		{ID: uuid.NewString(), Name: "Science Fiction"},
		{ID: uuid.NewString(), Name: "Animation"},
		{ID: uuid.NewString(), Name: "Drama"},
		{ID: uuid.NewString(), Name: "Comedy"},
	}
}
