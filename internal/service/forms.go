package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/internal/form"
	"exchange-form-service/internal/metrics"
	"exchange-form-service/pkg/logger"
)

type formRates interface {
	Table(ctx context.Context) (*model.RateTable, error)
	Balances(ctx context.Context) (model.Balances, error)
}

type exchangeExecutor interface {
	Execute(ctx context.Context, request model.ExchangeRequest) (*model.ExchangeResult, error)
}

type formSession struct {
	mu   sync.Mutex
	form *form.Form
}

// FormService keeps exchange forms by id. Each form is only touched while
// its session lock is held.
type FormService struct {
	rates    formRates
	exchange exchangeExecutor
	opts     form.Options
	metrics  *metrics.Metrics
	log      *logger.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*formSession
}

func NewFormService(rates formRates, exchange exchangeExecutor, opts form.Options,
	metrics *metrics.Metrics, log *logger.Logger) *FormService {
	return &FormService{
		rates:    rates,
		exchange: exchange,
		opts:     opts,
		metrics:  metrics,
		log:      log,
		sessions: make(map[uuid.UUID]*formSession),
	}
}

// Open creates a form on the first two configured currencies. It fails
// until a rate table has been loaded.
func (s *FormService) Open(ctx context.Context) (uuid.UUID, *model.FormState, error) {
	if len(s.opts.Currencies) < 2 {
		return uuid.Nil, nil, fmt.Errorf("%w: at least two currencies required", ErrInvalidCurrency)
	}

	table, err := s.rates.Table(ctx)
	if err != nil {
		return uuid.Nil, nil, err
	}
	f, err := form.New(table, s.opts.Currencies[0], s.opts.Currencies[1], s.opts)
	if err != nil {
		return uuid.Nil, nil, err
	}
	balances, err := s.rates.Balances(ctx)
	if err != nil {
		return uuid.Nil, nil, err
	}
	f.SetBalances(balances)

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = &formSession{form: f}
	s.mu.Unlock()
	s.metrics.OpenForms.Inc()

	s.log.Debug("Form opened", "form_id", id)
	state := f.State()
	return id, &state, nil
}

func (s *FormService) State(ctx context.Context, id uuid.UUID) (*model.FormState, error) {
	return s.update(ctx, id, func(*form.Form) error { return nil })
}

func (s *FormService) SetAmount(ctx context.Context, id uuid.UUID, side model.Side, amount *float64) (*model.FormState, error) {
	return s.update(ctx, id, func(f *form.Form) error {
		f.SetAmount(amount, side)
		return nil
	})
}

func (s *FormService) Focus(ctx context.Context, id uuid.UUID, side model.Side) (*model.FormState, error) {
	return s.update(ctx, id, func(f *form.Form) error {
		f.Focus(side)
		return nil
	})
}

func (s *FormService) SelectCurrency(ctx context.Context, id uuid.UUID, side model.Side, currency model.Currency) (*model.FormState, error) {
	return s.update(ctx, id, func(f *form.Form) error {
		if !currency.In(s.opts.Currencies) {
			return fmt.Errorf("%w: %s", ErrInvalidCurrency, currency)
		}
		f.SelectCurrency(side, currency)
		return nil
	})
}

// Submit takes the request out of the form and executes it. The form amount
// is cleared even when execution is rejected; the returned result still
// carries the request and the new state in that case.
func (s *FormService) Submit(ctx context.Context, id uuid.UUID) (*model.SubmitResult, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	f := session.form
	if err := s.sync(ctx, f); err != nil {
		return nil, err
	}

	submitted := &model.SubmitResult{Request: f.Submit()}
	if submitted.Request == nil {
		submitted.State = f.State()
		return submitted, nil
	}

	submitted.Result, err = s.exchange.Execute(ctx, *submitted.Request)

	if syncErr := s.sync(ctx, f); syncErr != nil {
		s.log.Error("Failed to refresh form after submit", "error", syncErr, "form_id", id)
	}
	submitted.State = f.State()
	return submitted, err
}

func (s *FormService) Close(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrFormNotFound
	}
	delete(s.sessions, id)
	s.metrics.OpenForms.Dec()
	s.log.Debug("Form closed", "form_id", id)
	return nil
}

func (s *FormService) session(id uuid.UUID) (*formSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	return session, nil
}

func (s *FormService) update(ctx context.Context, id uuid.UUID, apply func(f *form.Form) error) (*model.FormState, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if err := s.sync(ctx, session.form); err != nil {
		return nil, err
	}
	if err := apply(session.form); err != nil {
		return nil, err
	}
	state := session.form.State()
	return &state, nil
}

// sync hands the latest rate table and balances to f. Losing the table
// after it was loaded keeps the one the form already has.
func (s *FormService) sync(ctx context.Context, f *form.Form) error {
	table, err := s.rates.Table(ctx)
	switch {
	case err == nil:
		f.SetRates(table)
	case errors.Is(err, ErrRatesLoading), errors.Is(err, ErrRatesUnavailable):
	default:
		return err
	}

	balances, err := s.rates.Balances(ctx)
	if err != nil {
		return err
	}
	f.SetBalances(balances)
	return nil
}
