// Package memstore guarda leads, submissions, waitlist e usuários em memória com as
// mesmas restrições do Postgres (email único, lead_id único na waitlist, FKs).
package memstore

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

type Store struct {
	mu sync.Mutex

	leads       map[int64]*entity.Lead
	submissions map[int64]*entity.LeadSubmission
	waitlist    map[int64]*entity.WaitlistEntry
	users       map[int64]*entity.User

	leadSeq, submissionSeq, waitlistSeq, userSeq int64

	// failure, quando setado, é devolvido por todas as operações (simula banco fora)
	failure error
}

func New() *Store {
	return &Store{
		leads:       map[int64]*entity.Lead{},
		submissions: map[int64]*entity.LeadSubmission{},
		waitlist:    map[int64]*entity.WaitlistEntry{},
		users:       map[int64]*entity.User{},
	}
}

// SetFailure faz todas as operações seguintes falharem com err (nil volta ao normal).
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *Store) Close() error { return nil }

func (s *Store) Leads() *LeadRepository             { return &LeadRepository{s} }
func (s *Store) Submissions() *SubmissionRepository { return &SubmissionRepository{s} }
func (s *Store) Waitlist() *WaitlistRepository      { return &WaitlistRepository{s} }
func (s *Store) Users() *UserRepository             { return &UserRepository{s} }

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failure
}

type LeadRepository struct{ s *Store }

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}

	email := entity.NormalizeEmail(lead.Email)
	if email != "" {
		for _, l := range r.s.leads {
			if l.Email == email {
				return &entity.ConstraintError{Kind: entity.UniqueViolation, Constraint: "leads_email_key"}
			}
		}
	}

	r.s.leadSeq++
	lead.ID = r.s.leadSeq
	lead.Email = email
	cp := *lead
	r.s.leads[lead.ID] = &cp
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}

	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}

	email = entity.NormalizeEmail(email)
	for _, l := range r.s.leads {
		if email != "" && l.Email == email {
			cp := *l
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

// Count devolve quantos leads existem (usado nos testes de concorrência).
func (r *LeadRepository) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.leads)
}

type SubmissionRepository struct{ s *Store }

func (r *SubmissionRepository) Create(ctx context.Context, sub *entity.LeadSubmission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}

	if _, ok := r.s.leads[sub.LeadID]; !ok {
		return &entity.ConstraintError{Kind: entity.ForeignKeyViolation, Constraint: "lead_submissions_lead_id_fkey"}
	}

	r.s.submissionSeq++
	sub.ID = r.s.submissionSeq
	cp := *sub
	cp.Metadata = maps.Clone(sub.Metadata)
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r *SubmissionRepository) ListByLeadID(ctx context.Context, leadID int64) ([]*entity.LeadSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}

	out := []*entity.LeadSubmission{}
	for _, sub := range r.s.submissions {
		if sub.LeadID == leadID {
			cp := *sub
			cp.Metadata = maps.Clone(sub.Metadata)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type WaitlistRepository struct{ s *Store }

func (r *WaitlistRepository) Create(ctx context.Context, entry *entity.WaitlistEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}

	if _, ok := r.s.leads[entry.LeadID]; !ok {
		return &entity.ConstraintError{Kind: entity.ForeignKeyViolation, Constraint: "waitlist_entries_lead_id_fkey"}
	}
	for _, e := range r.s.waitlist {
		if e.LeadID == entry.LeadID {
			return &entity.ConstraintError{Kind: entity.UniqueViolation, Constraint: "waitlist_entries_lead_id_key"}
		}
	}

	r.s.waitlistSeq++
	entry.ID = r.s.waitlistSeq
	r.s.waitlist[entry.ID] = cloneEntry(entry)
	return nil
}

func (r *WaitlistRepository) FindByID(ctx context.Context, id int64) (*entity.WaitlistEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}

	e, ok := r.s.waitlist[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return cloneEntry(e), nil
}

func (r *WaitlistRepository) FindByLeadID(ctx context.Context, leadID int64) (*entity.WaitlistEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}

	for _, e := range r.s.waitlist {
		if e.LeadID == leadID {
			return cloneEntry(e), nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *WaitlistRepository) UpdateStatus(ctx context.Context, id int64, from, to entity.WaitlistStatus) (*entity.WaitlistEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}

	e, ok := r.s.waitlist[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	if e.Status != from {
		return nil, entity.ErrInvalidWaitlistTransition
	}
	if err := e.Transition(to, time.Now().UTC()); err != nil {
		return nil, err
	}
	return cloneEntry(e), nil
}

func cloneEntry(e *entity.WaitlistEntry) *entity.WaitlistEntry {
	cp := *e
	cp.NotificationPreferences = maps.Clone(e.NotificationPreferences)
	return &cp
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}

	if r.emailTaken(u.Email, 0) {
		return &entity.ConstraintError{Kind: entity.UniqueViolation, Constraint: "users_email_key"}
	}

	r.s.userSeq++
	u.ID = r.s.userSeq
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}

	u, ok := r.s.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}

	email = entity.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}

	if _, ok := r.s.users[u.ID]; !ok {
		return entity.ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return &entity.ConstraintError{Kind: entity.UniqueViolation, Constraint: "users_email_key"}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}

	if _, ok := r.s.users[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) emailTaken(email string, exceptID int64) bool {
	for id, u := range r.s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}
