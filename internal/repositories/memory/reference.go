package memory

import (
	"context"
	"sort"
	"sync"

	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
)

// Plans is an in-memory repositories.PlanRepository.
type Plans struct {
	mu    sync.Mutex
	plans map[uint]models.InvestmentPlan
}

func NewPlans(plans ...models.InvestmentPlan) *Plans {
	p := &Plans{plans: make(map[uint]models.InvestmentPlan)}
	for _, plan := range plans {
		_ = p.Create(context.Background(), &plan)
	}
	return p
}

var _ repositories.PlanRepository = (*Plans)(nil)

func (p *Plans) Create(ctx context.Context, plan *models.InvestmentPlan) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if plan.ID == 0 {
		plan.ID = uint(len(p.plans) + 1)
	}
	p.plans[plan.ID] = *plan
	return nil
}

func (p *Plans) Update(ctx context.Context, plan *models.InvestmentPlan) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.plans[plan.ID]; !ok {
		return repositories.ErrPlanNotFound
	}
	p.plans[plan.ID] = *plan
	return nil
}

func (p *Plans) GetByID(ctx context.Context, id uint) (*models.InvestmentPlan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	plan, ok := p.plans[id]
	if !ok {
		return nil, repositories.ErrPlanNotFound
	}
	return &plan, nil
}

func (p *Plans) List(ctx context.Context, activeOnly bool) ([]models.InvestmentPlan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.InvestmentPlan
	for _, plan := range p.plans {
		if activeOnly && !plan.IsActive() {
			continue
		}
		out = append(out, plan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PaymentMethods is an in-memory repositories.PaymentMethodRepository.
type PaymentMethods struct {
	mu      sync.Mutex
	methods map[uint]models.PaymentMethod
}

func NewPaymentMethods(methods ...models.PaymentMethod) *PaymentMethods {
	p := &PaymentMethods{methods: make(map[uint]models.PaymentMethod)}
	for _, m := range methods {
		_ = p.Create(context.Background(), &m)
	}
	return p
}

var _ repositories.PaymentMethodRepository = (*PaymentMethods)(nil)

func (p *PaymentMethods) Create(ctx context.Context, method *models.PaymentMethod) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if method.ID == 0 {
		method.ID = uint(len(p.methods) + 1)
	}
	p.methods[method.ID] = *method
	return nil
}

func (p *PaymentMethods) Update(ctx context.Context, method *models.PaymentMethod) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.methods[method.ID]; !ok {
		return repositories.ErrPaymentMethodNotFound
	}
	p.methods[method.ID] = *method
	return nil
}

func (p *PaymentMethods) GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.methods[id]
	if !ok {
		return nil, repositories.ErrPaymentMethodNotFound
	}
	return &m, nil
}

func (p *PaymentMethods) GetByName(ctx context.Context, name string) (*models.PaymentMethod, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.methods {
		if m.Name == name {
			return &m, nil
		}
	}
	return nil, repositories.ErrPaymentMethodNotFound
}

func (p *PaymentMethods) List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.PaymentMethod
	for _, m := range p.methods {
		if activeOnly && !m.IsActive() {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
