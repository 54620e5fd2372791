package filter

import (
	"slices"
	"sync"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Consumer получает результат каждого пересчёта вместе с его номером версии.
// Срез result принадлежит Pipeline и не должен изменяться.
type Consumer func(result []models.Subscription, version uint64)

// Pipeline хранит базовый список подписок и текущие критерии и держит
// отфильтрованный результат в актуальном состоянии.
//
// Каждое фактическое изменение входных данных приводит ровно к одному пересчёту
// и одному уведомлению потребителя. Изменение, не меняющее критерии, пересчёта не вызывает.
// Если пересчёты идут конкурентно, устаревший результат не доставляется после более нового.
type Pipeline struct {
	mu      sync.Mutex
	subs    []models.Subscription
	cfg     models.FilterConfig
	result  []models.Subscription
	version uint64

	notifyMu  sync.Mutex
	delivered uint64
	consumer  Consumer
}

// NewPipeline создаёт конвейер с критериями по умолчанию и сразу считает первый результат.
func NewPipeline(subs []models.Subscription, consumer Consumer) *Pipeline {
	p := &Pipeline{
		subs:     slices.Clone(subs),
		cfg:      models.DefaultFilterConfig(),
		consumer: consumer,
	}
	p.mu.Lock()
	result, version := p.recomputeLocked()
	p.mu.Unlock()
	p.publish(result, version)
	return p
}

// SetSubscriptions заменяет базовый список и пересчитывает результат.
func (p *Pipeline) SetSubscriptions(subs []models.Subscription) {
	p.mu.Lock()
	p.subs = slices.Clone(subs)
	result, version := p.recomputeLocked()
	p.mu.Unlock()
	p.publish(result, version)
}

// SetSearch меняет поисковую строку.
func (p *Pipeline) SetSearch(search string) bool {
	return p.mutate(func(cfg *models.FilterConfig) { cfg.Search = search })
}

// SetStatus меняет фильтр по статусу. Пустое значение снимает фильтр.
func (p *Pipeline) SetStatus(status models.Status) bool {
	return p.mutate(func(cfg *models.FilterConfig) { cfg.Status = status })
}

// SetBillingCycle меняет фильтр по периоду списания.
func (p *Pipeline) SetBillingCycle(cycle models.BillingCycle) bool {
	return p.mutate(func(cfg *models.FilterConfig) { cfg.BillingCycle = cycle })
}

// SetCategory меняет фильтр по категории.
func (p *Pipeline) SetCategory(category models.Category) bool {
	return p.mutate(func(cfg *models.FilterConfig) { cfg.Category = category })
}

// SetSort меняет ключ сортировки.
func (p *Pipeline) SetSort(key models.SortKey) bool {
	return p.mutate(func(cfg *models.FilterConfig) { cfg.Sort = models.ParseSortKey(string(key)) })
}

// Update применяет несколько изменений критериев за один пересчёт.
// Возвращает true, если пересчёт состоялся.
func (p *Pipeline) Update(patch models.FilterPatch) (bool, error) {
	p.mu.Lock()
	next, err := patch.Merge(p.cfg)
	if err != nil {
		p.mu.Unlock()
		return false, err
	}
	if next == p.cfg {
		p.mu.Unlock()
		return false, nil
	}
	p.cfg = next
	result, version := p.recomputeLocked()
	p.mu.Unlock()
	p.publish(result, version)
	return true, nil
}

// ClearFilters сбрасывает все фильтры и сортировку к billing-asc одним шагом:
// выполняется ровно один пересчёт.
func (p *Pipeline) ClearFilters() {
	p.mu.Lock()
	p.cfg = models.DefaultFilterConfig()
	result, version := p.recomputeLocked()
	p.mu.Unlock()
	p.publish(result, version)
}

// Result возвращает копию текущего результата и его версию.
func (p *Pipeline) Result() ([]models.Subscription, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.result), p.version
}

// Snapshot возвращает согласованные между собой критерии, результат и счётчики.
func (p *Pipeline) Snapshot() models.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return models.View{
		Criteria: p.cfg,
		Entries:  slices.Clone(p.result),
		Shown:    len(p.result),
		Total:    len(p.subs),
		Version:  p.version,
	}
}

// Config возвращает текущие критерии.
func (p *Pipeline) Config() models.FilterConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Total возвращает размер базового списка.
func (p *Pipeline) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

func (p *Pipeline) mutate(fn func(cfg *models.FilterConfig)) bool {
	p.mu.Lock()
	next := p.cfg
	fn(&next)
	if next == p.cfg {
		p.mu.Unlock()
		return false
	}
	p.cfg = next
	result, version := p.recomputeLocked()
	p.mu.Unlock()
	p.publish(result, version)
	return true
}

func (p *Pipeline) recomputeLocked() ([]models.Subscription, uint64) {
	p.result = Apply(p.subs, p.cfg)
	p.version++
	return p.result, p.version
}

func (p *Pipeline) publish(result []models.Subscription, version uint64) {
	if p.consumer == nil {
		return
	}
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	if version <= p.delivered {
		return
	}
	p.delivered = version
	p.consumer(result, version)
}
