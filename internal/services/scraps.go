package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/search"
	"github.com/dmitrijs2005/scrapsync/internal/timex"
)

// Analyzer produces an enrichment for a scrap. It is implemented outside
// this module; its errors are returned to the caller unchanged.
type Analyzer interface {
	Analyze(ctx context.Context, raw, note string, settings models.Settings, prompt string) (models.Enrichment, error)
}

// Store is the subset of *store.Store the services use.
type Store interface {
	search.Source
	PutItem(ctx context.Context, item models.Item) error
	SetStatus(ctx context.Context, id string, status models.Status) error
	SoftDelete(ctx context.Context, id string) error
	Settings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error
}

// View selects which part of the list is shown.
type View string

const (
	ViewInbox    View = "inbox"
	ViewArchived View = "archived"
	ViewAll      View = "all"
)

// ListFilter narrows List. The zero value lists the inbox.
type ListFilter struct {
	Query string
	View  View
}

// DefaultRecentTags is how many tags RecentTags returns when asked for 0.
const DefaultRecentTags = 15

// ScrapService defines the scrap operations.
type ScrapService interface {
	Capture(ctx context.Context, raw, note string) (*models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	UpdateNote(ctx context.Context, id, note string) error
	SetEnrichment(ctx context.Context, id string, e models.Enrichment) error
	Enrich(ctx context.Context, id, templateID string) (*models.Item, error)
	SetStatus(ctx context.Context, id string, status models.Status) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]models.IndexEntry, error)
	RecentTags(ctx context.Context, limit int) ([]string, error)
}

type scrapService struct {
	store    Store
	search   *search.Engine
	analyzer Analyzer
	now      timex.Clock
	newID    func() string
	log      logging.Logger
}

type Option func(*scrapService)

func WithClock(c timex.Clock) Option {
	return func(s *scrapService) { s.now = c }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *scrapService) { s.newID = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(s *scrapService) { s.log = l }
}

// NewScrapService wires a ScrapService. analyzer may be nil, in which case
// Enrich fails with common.ErrConfiguration.
func NewScrapService(st Store, analyzer Analyzer, opts ...Option) ScrapService {
	s := &scrapService{
		store:    st,
		analyzer: analyzer,
		now:      timex.NowMillis,
		newID:    uuid.NewString,
		log:      logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.search = search.New(st, s.log)
	return s
}

// Capture stores raw as a new inbox scrap.
func (s *scrapService) Capture(ctx context.Context, raw, note string) (*models.Item, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: nothing to capture", common.ErrValidation)
	}
	now := s.now()
	item := models.Item{
		ID:         s.newID(),
		CreatedAt:  now,
		UpdatedAt:  now,
		RawContent: raw,
		Note:       note,
	}
	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	s.log.Info(ctx, "scrap captured", "id", item.ID)
	return &item, nil
}

func (s *scrapService) Get(ctx context.Context, id string) (*models.Item, error) {
	return s.store.GetItem(ctx, id)
}

func (s *scrapService) update(ctx context.Context, id string, fn func(*models.Item)) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(item)
	item.UpdatedAt = s.now()
	if err := s.store.PutItem(ctx, *item); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return item, nil
}

func (s *scrapService) UpdateNote(ctx context.Context, id, note string) error {
	_, err := s.update(ctx, id, func(it *models.Item) { it.Note = note })
	return err
}

func (s *scrapService) SetEnrichment(ctx context.Context, id string, e models.Enrichment) error {
	if e.Tags == nil {
		e.Tags = []string{}
	}
	_, err := s.update(ctx, id, func(it *models.Item) { it.Enrichment = &e })
	return err
}

// Enrich runs the analyzer with the given prompt template (the first one
// when templateID is empty) and stores the result.
func (s *scrapService) Enrich(ctx context.Context, id, templateID string) (*models.Item, error) {
	if s.analyzer == nil {
		return nil, fmt.Errorf("%w: no analyzer available", common.ErrConfiguration)
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	tpl, err := pickTemplate(settings, templateID)
	if err != nil {
		return nil, err
	}
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	e, err := s.analyzer.Analyze(ctx, item.RawContent, item.Note, settings, tpl.Content)
	if err != nil {
		return nil, err
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return s.update(ctx, id, func(it *models.Item) { it.Enrichment = &e })
}

func pickTemplate(settings models.Settings, id string) (models.PromptTemplate, error) {
	if id == "" {
		if len(settings.PromptTemplates) == 0 {
			return models.PromptTemplate{}, nil
		}
		return settings.PromptTemplates[0], nil
	}
	tpl, ok := settings.Template(id)
	if !ok {
		return models.PromptTemplate{}, fmt.Errorf("%w: unknown prompt template %q", common.ErrValidation, id)
	}
	return tpl, nil
}

func (s *scrapService) SetStatus(ctx context.Context, id string, status models.Status) error {
	return s.store.SetStatus(ctx, id, status)
}

func (s *scrapService) Delete(ctx context.Context, id string) error {
	return s.store.SoftDelete(ctx, id)
}

// List searches, then keeps the entries of the requested view, newest
// created first.
func (s *scrapService) List(ctx context.Context, f ListFilter) ([]models.IndexEntry, error) {
	view := f.View
	if view == "" {
		view = ViewInbox
	}

	found, err := s.search.Search(ctx, f.Query)
	if err != nil {
		return nil, err
	}

	out := found[:0]
	for _, e := range found {
		if view == ViewAll || string(e.Status) == string(view) {
			out = append(out, e)
		}
	}
	models.SortEntries(out)
	return out, nil
}

// RecentTags returns up to limit distinct tags of archived scraps, newest
// scraps first.
func (s *scrapService) RecentTags(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultRecentTags
	}
	idx, err := s.store.GetIndex(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0, limit)
	for _, e := range idx.Items {
		if e.Deleted || e.Status != models.StatusArchived {
			continue
		}
		for _, t := range e.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
			if len(tags) == limit {
				return tags, nil
			}
		}
	}
	return tags, nil
}
