package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/travelia/travel-backend/internal/domain/entity"
	repo "github.com/travelia/travel-backend/internal/domain/repository"
)

// memStore backs the fake repositories. All repositories share one store so
// a test can inspect every table after a flow. Injectable failures simulate
// mid-transaction persistence errors.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users    map[string]*entity.User // by id
	emails   map[string]string       // email -> user id
	agents   map[string]*entity.AgentProfile
	corps    map[string]*entity.CorporateProfile
	sessions map[string]*entity.Session // by token
	otps     map[string]*entity.OtpCode // by id
	otpSeq   int

	failOtpCreate     error
	failSessionCreate error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*entity.User{},
		emails:   map[string]string{},
		agents:   map[string]*entity.AgentProfile{},
		corps:    map[string]*entity.CorporateProfile{},
		sessions: map[string]*entity.Session{},
		otps:     map[string]*entity.OtpCode{},
	}
}

func (s *memStore) repos() repo.Repositories {
	return repo.Repositories{
		Users:    &memUsers{s},
		Profiles: &memProfiles{s},
		Sessions: &memSessions{s},
		Otps:     &memOtps{s},
	}
}

type snapshot struct {
	users    map[string]*entity.User
	emails   map[string]string
	agents   map[string]*entity.AgentProfile
	corps    map[string]*entity.CorporateProfile
	sessions map[string]*entity.Session
	otps     map[string]*entity.OtpCode
	otpSeq   int
}

func (s *memStore) snap() *snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := &snapshot{
		users:    map[string]*entity.User{},
		emails:   map[string]string{},
		agents:   map[string]*entity.AgentProfile{},
		corps:    map[string]*entity.CorporateProfile{},
		sessions: map[string]*entity.Session{},
		otps:     map[string]*entity.OtpCode{},
		otpSeq:   s.otpSeq,
	}
	for k, v := range s.users {
		c := *v
		out.users[k] = &c
	}
	for k, v := range s.emails {
		out.emails[k] = v
	}
	for k, v := range s.agents {
		c := *v
		out.agents[k] = &c
	}
	for k, v := range s.corps {
		c := *v
		out.corps[k] = &c
	}
	for k, v := range s.sessions {
		c := *v
		out.sessions[k] = &c
	}
	for k, v := range s.otps {
		c := *v
		out.otps[k] = &c
	}
	return out
}

func (s *memStore) restore(sn *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = sn.users
	s.emails = sn.emails
	s.agents = sn.agents
	s.corps = sn.corps
	s.sessions = sn.sessions
	s.otps = sn.otps
	s.otpSeq = sn.otpSeq
}

// memUoW serializes transactions and restores the snapshot when the callback
// fails, mirroring rollback.
type memUoW struct {
	s *memStore
}

func (u *memUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.Repositories) error) error {
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()
	sn := u.s.snap()
	if err := fn(ctx, u.s.repos()); err != nil {
		u.s.restore(sn)
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emails[u.Email]; ok {
		return repo.ErrDuplicate
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	c := *u
	r.s.users[u.ID] = &c
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *r.s.users[id]
	return &c, nil
}

func (r *memUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Password = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memUsers) SetVerified(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.IsVerified = true
	u.UpdatedAt = time.Now()
	return nil
}

type memProfiles struct{ s *memStore }

func (r *memProfiles) CreateAgent(ctx context.Context, p *entity.AgentProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.agents[p.UserID]; ok {
		return repo.ErrDuplicate
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	c := *p
	r.s.agents[p.UserID] = &c
	return nil
}

func (r *memProfiles) CreateCorporate(ctx context.Context, p *entity.CorporateProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.corps[p.UserID]; ok {
		return repo.ErrDuplicate
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	c := *p
	r.s.corps[p.UserID] = &c
	return nil
}

func (r *memProfiles) GetAgentByUserID(ctx context.Context, userID string) (*entity.AgentProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.agents[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *memProfiles) GetCorporateByUserID(ctx context.Context, userID string) (*entity.CorporateProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.corps[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *p
	return &c, nil
}

type memSessions struct{ s *memStore }

func (r *memSessions) Create(ctx context.Context, sess *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failSessionCreate != nil {
		return r.s.failSessionCreate
	}
	if _, ok := r.s.sessions[sess.Token]; ok {
		return repo.ErrDuplicate
	}
	sess.CreatedAt = time.Now()
	c := *sess
	r.s.sessions[sess.Token] = &c
	return nil
}

func (r *memSessions) GetByToken(ctx context.Context, token string) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[token]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *sess
	return &c, nil
}

func (r *memSessions) DeleteByToken(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, token)
	return nil
}

func (r *memSessions) DeleteExpired(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for tok, sess := range r.s.sessions {
		if !sess.ExpiresAt.After(time.Now()) {
			delete(r.s.sessions, tok)
			n++
		}
	}
	return n, nil
}

type memOtps struct{ s *memStore }

func (r *memOtps) Create(ctx context.Context, c *entity.OtpCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failOtpCreate != nil {
		return r.s.failOtpCreate
	}
	r.s.otpSeq++
	c.ID = uuid.NewString()
	c.CreatedAt = time.Unix(0, int64(r.s.otpSeq))
	cp := *c
	r.s.otps[c.ID] = &cp
	return nil
}

func (r *memOtps) FindValid(ctx context.Context, userID string, kind entity.OtpKind, code string, now time.Time) (*entity.OtpCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *entity.OtpCode
	for _, c := range r.s.otps {
		if c.Kind != kind || c.Code != code || c.Verified || !c.ExpiresAt.After(now) {
			continue
		}
		if userID != "" && c.UserID != userID {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) {
			best = c
		}
	}
	if best == nil {
		return nil, repo.ErrNotFound
	}
	c := *best
	return &c, nil
}

func (r *memOtps) MarkVerified(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.otps[id]
	if !ok || c.Verified {
		return false, nil
	}
	c.Verified = true
	return true, nil
}

func (r *memOtps) CountByUserKind(ctx context.Context, userID string, kind entity.OtpKind) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.otps {
		if c.UserID == userID && c.Kind == kind {
			n++
		}
	}
	return n, nil
}

// otpCount counts every code in the store regardless of owner.
func (s *memStore) otpCount(kind entity.OtpKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.otps {
		if kind == "" || c.Kind == kind {
			n++
		}
	}
	return n
}

// otpByUserKind returns the single code for (user, kind); tests use it to
// read the generated code the way an email recipient would.
func (s *memStore) otpByUserKind(userID string, kind entity.OtpKind) *entity.OtpCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *entity.OtpCode
	for _, c := range s.otps {
		if c.UserID == userID && c.Kind == kind {
			cp := *c
			found = &cp
		}
	}
	return found
}

func (s *memStore) expireOtp(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.otps[id]; ok {
		c.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

func (s *memStore) deleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		delete(s.emails, u.Email)
		delete(s.users, id)
	}
}

var (
	_ repo.UserRepository    = (*memUsers)(nil)
	_ repo.ProfileRepository = (*memProfiles)(nil)
	_ repo.SessionRepository = (*memSessions)(nil)
	_ repo.OtpRepository     = (*memOtps)(nil)
	_ repo.UnitOfWork        = (*memUoW)(nil)
)
