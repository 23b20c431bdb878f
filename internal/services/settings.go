package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/models"
)

// SettingsService reads and edits the settings carried in every snapshot.
type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
	Templates(ctx context.Context) ([]models.PromptTemplate, error)
	SaveTemplate(ctx context.Context, t models.PromptTemplate) (models.PromptTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
}

type settingsService struct {
	store Store
	newID func() string
}

func NewSettingsService(st Store) SettingsService {
	return &settingsService{store: st, newID: uuid.NewString}
}

func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	return s.store.Settings(ctx)
}

func (s *settingsService) Save(ctx context.Context, st models.Settings) error {
	return s.store.SaveSettings(ctx, st)
}

func (s *settingsService) Templates(ctx context.Context) ([]models.PromptTemplate, error) {
	st, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return st.PromptTemplates, nil
}

// SaveTemplate adds t, or replaces the template with the same id. A new
// template without an id gets one.
func (s *settingsService) SaveTemplate(ctx context.Context, t models.PromptTemplate) (models.PromptTemplate, error) {
	if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Content) == "" {
		return models.PromptTemplate{}, fmt.Errorf("%w: template needs a name and content", common.ErrValidation)
	}
	st, err := s.store.Settings(ctx)
	if err != nil {
		return models.PromptTemplate{}, err
	}

	if t.ID == "" {
		t.ID = s.newID()
	}
	replaced := false
	for i := range st.PromptTemplates {
		if st.PromptTemplates[i].ID == t.ID {
			st.PromptTemplates[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		st.PromptTemplates = append(st.PromptTemplates, t)
	}

	if err := s.store.SaveSettings(ctx, st); err != nil {
		return models.PromptTemplate{}, err
	}
	return t, nil
}

func (s *settingsService) DeleteTemplate(ctx context.Context, id string) error {
	st, err := s.store.Settings(ctx)
	if err != nil {
		return err
	}
	kept := st.PromptTemplates[:0]
	for _, t := range st.PromptTemplates {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(st.PromptTemplates) {
		return fmt.Errorf("%w: prompt template %q", common.ErrNotFound, id)
	}
	st.PromptTemplates = kept
	return s.store.SaveSettings(ctx, st)
}
