package dialin

import (
	"context"
	"slices"
	"time"

	"dialin/internal/barista"
	"dialin/internal/models"
	"dialin/internal/tracing"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// BeanView is a bean profile with its derived freshness.
type BeanView struct {
	*models.BeanProfile
	DaysSinceRoast *int                    `json:"daysSinceRoast,omitempty"`
	Freshness      barista.FreshnessStatus `json:"freshness"`
}

// AddBean creates a bean profile. Profiles are active unless the request
// says otherwise.
func (a *App) AddBean(ctx context.Context, req *models.BeanProfileRequest) (*models.BeanProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.AppSpan(ctx, "add_bean")
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	bean := &models.BeanProfile{ID: a.newID(), IsActive: true, CreatedAt: a.now()}
	req.Apply(bean)
	a.beans = append(a.beans, bean)

	log.Info().Str("id", bean.ID).Str("name", bean.Name).Msg("Added bean profile")

	if err := a.store.SaveBeans(ctx, a.beans); err != nil {
		tracing.EndWithError(span, err)
		return bean, err
	}
	return bean, nil
}

// UpdateBean edits a bean profile. Like UpdateRecipe it replaces the record
// with an edited copy.
func (a *App) UpdateBean(ctx context.Context, id string, req *models.BeanProfileRequest) (*models.BeanProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.AppSpan(ctx, "update_bean", attribute.String("bean.id", id))
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.beanIndexLocked(id)
	if i < 0 {
		return nil, ErrBeanNotFound
	}
	updated := *a.beans[i]
	req.Apply(&updated)
	bean := &updated
	a.beans[i] = bean

	if err := a.store.SaveBeans(ctx, a.beans); err != nil {
		tracing.EndWithError(span, err)
		return bean, err
	}
	return bean, nil
}

// DeleteBean removes a bean profile. Shots for the bean are kept.
func (a *App) DeleteBean(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.beanIndexLocked(id)
	if i < 0 {
		return ErrBeanNotFound
	}
	a.beans = slices.Delete(a.beans, i, i+1)
	log.Info().Str("id", id).Msg("Deleted bean profile")
	return a.store.SaveBeans(ctx, a.beans)
}

// ToggleBeanActive flips whether a bean is in rotation and returns the new
// state.
func (a *App) ToggleBeanActive(ctx context.Context, id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.beanIndexLocked(id)
	if i < 0 {
		return false, ErrBeanNotFound
	}
	bean := *a.beans[i]
	bean.IsActive = !bean.IsActive
	a.beans[i] = &bean
	return bean.IsActive, a.store.SaveBeans(ctx, a.beans)
}

// Beans returns every profile with its freshness, newest first.
func (a *App) Beans() []BeanView {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	views := make([]BeanView, 0, len(a.beans))
	for _, b := range a.beans {
		views = append(views, beanView(b, now))
	}
	slices.SortStableFunc(views, func(x, y BeanView) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	return views
}

// Bean returns one profile with its freshness.
func (a *App) Bean(id string) (BeanView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.beanIndexLocked(id)
	if i < 0 {
		return BeanView{}, ErrBeanNotFound
	}
	return beanView(a.beans[i], a.now()), nil
}

func beanView(b *models.BeanProfile, now time.Time) BeanView {
	status, days := barista.BeanFreshness(b, now)
	return BeanView{BeanProfile: b, DaysSinceRoast: days, Freshness: status}
}

func (a *App) beanIndexLocked(id string) int {
	return slices.IndexFunc(a.beans, func(b *models.BeanProfile) bool { return b.ID == id })
}
