package filter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type recorder struct {
	mu       sync.Mutex
	results  [][]string
	versions []uint64
}

func (r *recorder) consume(result []models.Subscription, version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, ids(result))
	r.versions = append(r.versions, version)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func (r *recorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[len(r.results)-1]
}

func TestPipelineInitialResult(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(fixture(), rec.consume)

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, []string{"office", "spotify", "netflix", "gym", "water"}, rec.last())
	assert.Equal(t, models.DefaultFilterConfig(), p.Config())
	assert.Equal(t, 5, p.Total())
}

func TestPipelineSetters(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(fixture(), rec.consume)

	assert.True(t, p.SetCategory(models.CategoryEntertainment))
	assert.Equal(t, 2, rec.count())
	assert.Equal(t, []string{"spotify", "netflix"}, rec.last())

	assert.True(t, p.SetSort(models.SortNameDesc))
	assert.Equal(t, 3, rec.count())
	assert.Equal(t, []string{"spotify", "netflix"}, rec.last())

	assert.True(t, p.SetStatus(models.StatusActive))
	assert.Equal(t, []string{"netflix"}, rec.last())

	assert.True(t, p.SetBillingCycle(models.BillingYearly))
	assert.Empty(t, rec.last())

	assert.True(t, p.SetSearch("net"))
	assert.Equal(t, 6, rec.count())

	result, version := p.Result()
	assert.Empty(t, result)
	assert.Equal(t, uint64(6), version)
}

func TestPipelineNoopSetterDoesNotRecompute(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(fixture(), rec.consume)

	assert.True(t, p.SetSearch("gym"))
	assert.Equal(t, 2, rec.count())

	assert.False(t, p.SetSearch("gym"))
	assert.False(t, p.SetSort(models.SortBillingAsc))
	assert.False(t, p.SetStatus(""))
	assert.Equal(t, 2, rec.count())

	changed, err := p.Update(models.FilterPatch{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, rec.count())
}

func TestPipelineUpdateIsSingleRecompute(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(fixture(), rec.consume)

	status, category, sort := "active", "Entertainment", "price-desc"
	changed, err := p.Update(models.FilterPatch{Status: &status, Category: &category, Sort: &sort})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, rec.count())
	assert.Equal(t, []string{"netflix"}, rec.last())

	bad := "weekly"
	changed, err = p.Update(models.FilterPatch{BillingCycle: &bad})
	assert.ErrorIs(t, err, models.ErrInvalidFilter)
	assert.False(t, changed)
	assert.Equal(t, 2, rec.count())
}

func TestPipelineClearFilters(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(fixture(), rec.consume)

	p.SetSearch("o")
	p.SetStatus(models.StatusActive)
	p.SetCategory(models.CategoryBusiness)
	p.SetSort(models.SortNameDesc)
	before := rec.count()

	p.ClearFilters()

	assert.Equal(t, before+1, rec.count())
	assert.Equal(t, models.DefaultFilterConfig(), p.Config())
	assert.Equal(t, []string{"office", "spotify", "netflix", "gym", "water"}, rec.last())
}

func TestPipelineSetSubscriptions(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(nil, rec.consume)
	assert.Empty(t, rec.last())

	p.SetStatus(models.StatusActive)
	p.SetSubscriptions(fixture())

	assert.Equal(t, 3, rec.count())
	assert.Equal(t, []string{"office", "netflix"}, rec.last())
	assert.Equal(t, 5, p.Total())
}

func TestPipelineResultIsCopy(t *testing.T) {
	p := NewPipeline(fixture(), nil)

	result, _ := p.Result()
	result[0].Name = "changed"

	again, _ := p.Result()
	assert.NotEqual(t, "changed", again[0].Name)
}

func TestPipelineConcurrentUpdatesDeliverNewestLast(t *testing.T) {
	rec := &recorder{}
	p := NewPipeline(fixture(), rec.consume)

	var wg sync.WaitGroup
	searches := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, s := range searches {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			p.SetSearch(s)
			p.SetSort(models.SortNameAsc)
			p.SetSort(models.SortPriceAsc)
		}(s)
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := 1; i < len(rec.versions); i++ {
		assert.Greater(t, rec.versions[i], rec.versions[i-1])
	}

	_, version := p.Result()
	assert.Equal(t, version, rec.versions[len(rec.versions)-1])
}

func TestPipelineSnapshot(t *testing.T) {
	p := NewPipeline(fixture(), nil)
	p.SetCategory(models.CategoryEntertainment)

	view := p.Snapshot()
	assert.Equal(t, models.CategoryEntertainment, view.Criteria.Category)
	assert.Equal(t, []string{"spotify", "netflix"}, ids(view.Entries))
	assert.Equal(t, 2, view.Shown)
	assert.Equal(t, 5, view.Total)
	assert.Equal(t, uint64(2), view.Version)
}
