package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/coordinator"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/features/genrelist"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/features/populartitles"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/features/searchtitles"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/features/titledetails"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

const settleTimeout = 5 * time.Second

// runWalkthrough drives all four catalog features once, narrating what the
// render callbacks show. The controllers run with their default launcher, so
// every load is asynchronous exactly as it would be behind a real screen.
func runWalkthrough(
	ctx context.Context,
	client *catalogapi.Client,
	cacheStore datalayer.CacheStore,
	catalog *catalogServer,
	obs ObservabilityConfig,
) error {
	if err := showGenreTaxonomy(ctx, client, catalog, obs); err != nil {
		return err
	}

	popular, firstTitle, err := showPopularTitles(ctx, client, cacheStore, obs)
	if err != nil {
		return err
	}
	defer popular.Teardown()

	details, err := showTitleDetails(ctx, client, cacheStore, popular, firstTitle, obs)
	if err != nil {
		return err
	}
	defer details.Teardown()

	if err := showTitleSearch(ctx, client, catalog, obs); err != nil {
		return err
	}

	return showCatalogOutage(ctx, popular, details, firstTitle, catalog)
}

func showGenreTaxonomy(ctx context.Context, client *catalogapi.Client, catalog *catalogServer, obs ObservabilityConfig) error {
	log.Printf("--- Genre taxonomy: single-shot operation with single-flight ---")

	loader, err := genrelist.NewLoader(client, genreOptions(obs)...)
	if err != nil {
		return err
	}

	var wg conc.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Go(func() {
			list, loadErr := loader.Load(ctx)
			if loadErr != nil {
				log.Printf("[genre_list] failed: %v", loadErr)
				return
			}

			log.Printf("[genre_list] %s", describeGenres(list))
		})
	}
	wg.Wait()

	log.Printf("[genre_list] 3 concurrent loads hit the catalog %d time(s)", catalog.genreHits.Load())

	return ctx.Err()
}

func showPopularTitles(
	ctx context.Context,
	client *catalogapi.Client,
	cacheStore datalayer.CacheStore,
	obs ObservabilityConfig,
) (*populartitles.Controller, core.Title, error) {
	log.Printf("--- Popular titles: cache-first strategy ---")

	popular, err := populartitles.NewController(
		client, cacheStore, printState[core.TitleList]("popular_titles", describeTitles),
		popularOptions(obs)...)
	if err != nil {
		return nil, core.Title{}, err
	}

	log.Printf("cold load, the cache is still empty:")
	popular.Load()

	if !waitUntil(ctx, settleTimeout, func() bool { return popular.CurrentState().IsContent() }) {
		popular.Teardown()
		return nil, core.Title{}, errors.New("popular titles never rendered content")
	}

	log.Printf("second load, the cached list renders first and the refreshed one replaces it:")
	popular.Load()
	pause(ctx, 500*time.Millisecond)

	list, _ := popular.CurrentState().Content()
	if list.Count == 0 {
		popular.Teardown()
		return nil, core.Title{}, errors.New("the demo catalog served no titles")
	}

	return popular, list.Titles[0], nil
}

func showTitleDetails(
	ctx context.Context,
	client *catalogapi.Client,
	cacheStore datalayer.CacheStore,
	popular *populartitles.Controller,
	firstTitle core.Title,
	obs ObservabilityConfig,
) (*titledetails.Controller, error) {
	log.Printf("--- Title details: remote-first strategy ---")

	details, err := titledetails.NewController(
		client, cacheStore, printState[core.Title]("title_details", describeTitle),
		detailsOptions(obs)...)
	if err != nil {
		return nil, err
	}

	// selecting a title on the popular screen navigates to its details
	popular.OnTitleSelected(func(notification populartitles.TitleSelected) {
		log.Printf("[popular_titles] selected %q, navigating to details", notification.Name)

		titleID, parseErr := uuid.Parse(notification.TitleID)
		if parseErr != nil {
			log.Printf("[popular_titles] selection carried an invalid title id: %v", parseErr)
			return
		}

		details.Load(titledetails.BuildQuery(titleID))
	})

	popular.Select(firstTitle)

	if !waitUntil(ctx, settleTimeout, func() bool { return details.CurrentState().IsContent() }) {
		details.Teardown()
		return nil, errors.New("title details never rendered content")
	}

	return details, nil
}

func showTitleSearch(ctx context.Context, client *catalogapi.Client, catalog *catalogServer, obs ObservabilityConfig) error {
	log.Printf("--- Title search: plain strategy, nothing cached ---")

	search, err := searchtitles.NewController(
		client, printState[core.TitleList]("search_titles", describeTitles),
		searchOptions(obs)...)
	if err != nil {
		return err
	}
	defer search.Teardown()

	log.Printf("searching for %q, too short to go remote:", "du")
	search.Search(searchtitles.BuildQuery("du"))

	if !waitUntil(ctx, settleTimeout, func() bool { return search.CurrentState().IsEmpty() }) {
		return errors.New("a too short search never rendered empty")
	}

	log.Printf("[search_titles] the catalog search endpoint was hit %d time(s)", catalog.searchHits.Load())

	log.Printf("searching for %q:", "dune")
	search.Search(searchtitles.BuildQuery("dune"))

	settled := func() bool {
		state := search.CurrentState()
		return state.IsContent() || state.IsEmpty() || state.IsFailed()
	}
	if !waitUntil(ctx, settleTimeout, settled) {
		return errors.New("the search never settled")
	}

	return ctx.Err()
}

func showCatalogOutage(
	ctx context.Context,
	popular *populartitles.Controller,
	details *titledetails.Controller,
	firstTitle core.Title,
	catalog *catalogServer,
) error {
	log.Printf("--- Catalog outage: the cache keeps the screens alive ---")

	catalog.Close()

	log.Printf("catalog API stopped, loading popular titles again:")
	popular.Load()

	// the cached list renders right away; the failing background refresh
	// retries for a while and is then suppressed behind the served content
	pause(ctx, 2*time.Second)

	if popular.CurrentState().IsContent() {
		log.Printf("[popular_titles] still showing the cached list, the failed refresh never reached the screen")
	}

	log.Printf("loading details for %q again, the cached record serves as fallback:", firstTitle.Name)

	titleID, err := uuid.Parse(firstTitle.ID)
	if err != nil {
		return fmt.Errorf("invalid title id in demo data: %w", err)
	}

	details.Load(titledetails.BuildQuery(titleID))
	pause(ctx, 2*time.Second)

	if details.CurrentState().IsContent() {
		log.Printf("[title_details] still showing the cached record although the catalog is down")
	}

	return ctx.Err()
}

/*** Render callbacks, option plumbing and small helpers ***/

// printState builds a render callback that narrates every state transition
// of one screen.
func printState[T any](screenName string, describe func(T) string) coordinator.RenderFunc[T] {
	return func(state coordinator.ViewState[T]) {
		switch {
		case state.IsLoading():
			log.Printf("[%s] loading...", screenName)
		case state.IsEmpty():
			log.Printf("[%s] nothing to show", screenName)
		case state.IsFailed():
			message, _ := state.Message()
			log.Printf("[%s] failed: %s", screenName, message)
		default:
			content, _ := state.Content()
			log.Printf("[%s] %s", screenName, describe(content))
		}
	}
}

// waitUntil polls the condition until it holds, the timeout expires or the
// context ends. It reports the final evaluation.
func waitUntil(ctx context.Context, timeout time.Duration, condition func() bool) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return true
		}

		select {
		case <-ctx.Done():
			return condition()
		case <-deadline.C:
			return condition()
		case <-ticker.C:
		}
	}
}

func pause(ctx context.Context, duration time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(duration):
	}
}

func describeTitles(list core.TitleList) string {
	if list.Count == 0 {
		return "no titles"
	}

	names := make([]string, 0, list.Count)
	for _, title := range list.Titles {
		names = append(names, title.Name)
	}

	return fmt.Sprintf("%d titles: %s", list.Count, strings.Join(names, ", "))
}

func describeTitle(title core.Title) string {
	return fmt.Sprintf("%s (%d) rated %.1f: %s", title.Name, title.ReleaseYear, title.Rating, title.Overview)
}

func describeGenres(list core.GenreList) string {
	names := make([]string, 0, list.Count)
	for _, genre := range list.Genres {
		names = append(names, genre.Name)
	}

	return fmt.Sprintf("%d genres: %s", list.Count, strings.Join(names, ", "))
}

func genreOptions(obs ObservabilityConfig) []genrelist.Option {
	var options []genrelist.Option

	if obs.ContextualLogger != nil {
		options = append(options, genrelist.WithContextualLogging(obs.ContextualLogger))
	}
	if obs.MetricsCollector != nil {
		options = append(options, genrelist.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, genrelist.WithTracing(obs.TracingCollector))
	}

	return options
}

func popularOptions(obs ObservabilityConfig) []populartitles.Option {
	var options []populartitles.Option

	if obs.ContextualLogger != nil {
		options = append(options, populartitles.WithContextualLogging(obs.ContextualLogger))
	}
	if obs.MetricsCollector != nil {
		options = append(options, populartitles.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, populartitles.WithTracing(obs.TracingCollector))
	}

	return options
}

func detailsOptions(obs ObservabilityConfig) []titledetails.Option {
	var options []titledetails.Option

	if obs.ContextualLogger != nil {
		options = append(options, titledetails.WithContextualLogging(obs.ContextualLogger))
	}
	if obs.MetricsCollector != nil {
		options = append(options, titledetails.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, titledetails.WithTracing(obs.TracingCollector))
	}

	return options
}

func searchOptions(obs ObservabilityConfig) []searchtitles.Option {
	var options []searchtitles.Option

	if obs.ContextualLogger != nil {
		options = append(options, searchtitles.WithContextualLogging(obs.ContextualLogger))
	}
	if obs.MetricsCollector != nil {
		options = append(options, searchtitles.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, searchtitles.WithTracing(obs.TracingCollector))
	}

	return options
}
