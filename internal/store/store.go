package store

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"markdown-blog/internal/config"
	"markdown-blog/internal/markdown"
	"markdown-blog/internal/models"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound reports that no Markdown file backs the requested name.
// Handlers render a fallback page on it; it is never a fatal condition.
var ErrNotFound = errors.New("post not found")

// Renderer is the slice of the Markdown renderer the store consumes.
// Tests substitute counting or failing implementations.
type Renderer interface {
	Render(src []byte) (*markdown.Result, error)
}

// now is a small indirection so tests can advance the clock.
var now = time.Now

// entry is one per-file cache slot: the rendered post plus the two
// freshness signals. It is valid only while the file's current mtime
// still equals modTime AND the fill is younger than the file TTL;
// either failing forces a re-read and re-render.
type entry struct {
	post     *models.Post
	modTime  time.Time
	filledAt time.Time
}

// listState is the aggregated listing plus the modification-time
// tracking table used for the "any file changed" check.
type listState struct {
	posts    []*models.Post
	modTimes map[string]time.Time
	filledAt time.Time
}

// Store owns the content caches: one entry per Markdown file, one
// aggregated list, with the about page riding the per-file cache. All
// maps sit behind one RWMutex since request goroutines share the Store;
// refreshes are deduplicated through singleflight so racing requests
// for one stale file cost exactly one render.
type Store struct {
	content config.ContentConfig
	fileTTL time.Duration
	listTTL time.Duration
	workers int

	renderer Renderer
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entry
	list    *listState

	sf singleflight.Group
}

// New builds a Store over the configured content directory.
func New(cfg *config.Config, renderer Renderer, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		content:  cfg.Content,
		fileTTL:  time.Duration(cfg.Cache.FileTTL),
		listTTL:  time.Duration(cfg.Cache.ListTTL),
		workers:  cfg.Render.Workers,
		renderer: renderer,
		logger:   logger,
		entries:  make(map[string]*entry),
	}
}

// Get returns the rendered post for name (the filename without .md),
// serving the cached entry while it stays valid and refreshing it in
// place otherwise. Missing files yield ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (*models.Post, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}

	path := filepath.Join(s.content.Dir, name+".md")
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if post, ok := s.cached(name, fi.ModTime()); ok {
		return post, nil
	}

	// Deduplicate concurrent refreshes of the same file: every waiter
	// shares the single render below.
	v, err, _ := s.sf.Do(name, func() (any, error) {
		return s.refresh(name, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Post), nil
}

// cached returns the entry for name when it is still valid against the
// file's current modification time and the file TTL.
func (s *Store) cached(name string, modTime time.Time) (*models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	if !e.modTime.Equal(modTime) {
		return nil, false
	}
	if now().Sub(e.filledAt) >= s.fileTTL {
		return nil, false
	}
	return e.post, true
}

// refresh re-reads and re-renders one file, storing the fresh entry.
// Runs inside singleflight; re-checks the cache first so a wave of
// waiters that queued behind a finished flight reuses its result.
func (s *Store) refresh(name, path string) (*models.Post, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if post, ok := s.cached(name, fi.ModTime()); ok {
		return post, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := s.renderer.Render(raw)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}

	post := &models.Post{
		Name:    name,
		Title:   postTitle(res.Meta, name),
		HTML:    template.HTML(res.HTML),
		Excerpt: template.HTML(markdown.Excerpt(string(res.HTML), markdown.DefaultExcerptLength)),
		Meta:    res.Meta,
		Raw:     res.Body,
		ModTime: fi.ModTime(),
	}

	s.mu.Lock()
	s.entries[name] = &entry{post: post, modTime: fi.ModTime(), filledAt: now()}
	s.mu.Unlock()

	s.logger.Debug("post rendered", "name", name, "mtime", fi.ModTime())
	return post, nil
}

// All returns the post listing, newest first. The cached list serves
// while it is inside the list TTL and the directory scan matches the
// tracking table exactly; additions, removals, and touched files all
// force a rebuild. Per-file failures are logged and skipped, never
// aborting the aggregation.
func (s *Store) All(ctx context.Context) ([]*models.Post, error) {
	scan, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("scan content dir: %w", err)
	}

	s.mu.RLock()
	ls := s.list
	s.mu.RUnlock()

	if ls != nil && now().Sub(ls.filledAt) < s.listTTL && sameModTimes(ls.modTimes, scan) {
		return ls.posts, nil
	}

	posts := s.fetchAll(ctx, scan)

	s.mu.Lock()
	s.list = &listState{posts: posts, modTimes: scan, filledAt: now()}
	s.mu.Unlock()

	s.logger.Debug("post list rebuilt", "posts", len(posts))
	return posts, nil
}

// About returns the configured about page, cached like any other file.
// The ignore list keeps it out of All.
func (s *Store) About(ctx context.Context) (*models.Post, error) {
	return s.Get(ctx, s.content.AboutName())
}

// Warm performs the blocking startup preload: list cache plus the about
// page, so the first request never pays render latency. A missing about
// file is fine; the handler has a fallback for it.
func (s *Store) Warm(ctx context.Context) error {
	posts, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("preload list: %w", err)
	}
	if _, err := s.About(ctx); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("preload about page: %w", err)
	}
	s.logger.Info("content caches warmed", "posts", len(posts))
	return nil
}

// scan enumerates the regular *.md files in the content directory,
// minus the ignore list, keyed by name with their current mtimes. This
// stat pass runs on every All call; it is the change-detection signal.
func (s *Store) scan() (map[string]time.Time, error) {
	dirents, err := os.ReadDir(s.content.Dir)
	if err != nil {
		return nil, err
	}

	files := make(map[string]time.Time, len(dirents))
	for _, de := range dirents {
		if !de.Type().IsRegular() {
			continue
		}
		fname := de.Name()
		if filepath.Ext(fname) != ".md" || s.content.Ignored(fname) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			s.logger.Warn("skipping unreadable file", "file", fname, "error", err)
			continue
		}
		files[strings.TrimSuffix(fname, ".md")] = info.ModTime()
	}
	return files, nil
}

// fetchAll renders every scanned file through the per-file cache with a
// bounded worker pool and returns them sorted newest first, names
// breaking ties.
func (s *Store) fetchAll(ctx context.Context, scan map[string]time.Time) []*models.Post {
	names := make([]string, 0, len(scan))
	for name := range scan {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]*models.Post, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, name := range names {
		g.Go(func() error {
			post, err := s.Get(ctx, name)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					s.logger.Warn("skipping post in listing", "name", name, "error", err)
				}
				return nil
			}
			results[i] = post
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are skips

	posts := make([]*models.Post, 0, len(results))
	for _, p := range results {
		if p != nil {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].ModTime.Equal(posts[j].ModTime) {
			return posts[i].ModTime.After(posts[j].ModTime)
		}
		return posts[i].Name < posts[j].Name
	})
	return posts
}

// sameModTimes reports whether two tracking tables hold the same files
// with the same modification times.
func sameModTimes(a, b map[string]time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for name, mt := range b {
		prev, ok := a[name]
		if !ok || !prev.Equal(mt) {
			return false
		}
	}
	return true
}

// validName rejects anything that could escape the content directory.
// Slugs are plain file names, never paths.
func validName(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}

// postTitle picks the front matter title, falling back to a humanized
// file name ("my-first-post" reads "My First Post"), then "Untitled".
func postTitle(meta map[string][]string, name string) string {
	if vals := meta["title"]; len(vals) > 0 && strings.TrimSpace(vals[0]) != "" {
		return vals[0]
	}
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return "Untitled"
	}
	for i, f := range fields {
		r := []rune(f)
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}
