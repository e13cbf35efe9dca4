package service

import (
	"academic_records/internal/common"
	"academic_records/internal/common/security"
	"academic_records/internal/domain/model"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func testHasher() *security.PasswordHasher {
	return security.NewPasswordHasher(bcrypt.MinCost)
}

func userPrincipal(id int64) *model.Principal {
	return model.NewPrincipal(id, "user", []model.Role{model.RoleUser}, true)
}

func adminPrincipal() *model.Principal {
	return model.NewPrincipal(1, "admin", []model.Role{model.RoleAdmin}, true)
}

var errStoreDown = errors.New("store unavailable")

// fakeUserRepo enforces username and email uniqueness like the real table does.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
	// hideExisting makes the Exists checks miss, simulating a lost race.
	hideExisting bool
	err          error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]model.User{}}
}

func (r *fakeUserRepo) add(u model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
	}
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.users[u.ID] = u
	return &u
}

func (r *fakeUserRepo) conflicts(u *model.User) bool {
	for _, other := range r.users {
		if other.ID != u.ID && (other.Username == u.Username || other.Email == u.Email) {
			return true
		}
	}
	return false
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.conflicts(u) {
		return common.Conflictf("user with given username or email already exists")
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return common.ErrNotFound
	}
	if r.conflicts(u) {
		return common.Conflictf("user with given username or email already exists")
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) SetRoles(_ context.Context, id int64, roles []model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Roles = append([]model.Role(nil), roles...)
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) find(match func(model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) exists(match func(model.User) bool) (bool, error) {
	if r.hideExisting {
		return false, nil
	}
	_, err := r.find(match)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return r.exists(func(u model.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.exists(func(u model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) List(context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) HasAdmin(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.IsAdmin() {
			return true, nil
		}
	}
	return false, nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	tokens  map[string]time.Time
	userCut map[int64]time.Time
	err     error
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{tokens: map[string]time.Time{}, userCut: map[int64]time.Time{}}
}

func (f *fakeRevocations) RevokeToken(_ context.Context, id string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tokens[id] = exp
	return nil
}

func (f *fakeRevocations) IsTokenRevoked(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[id]
	return ok, f.err
}

func (f *fakeRevocations) RevokeUserTokens(_ context.Context, userID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.userCut[userID] = at
	return nil
}

func (f *fakeRevocations) UserTokensRevokedAt(_ context.Context, userID int64) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.userCut[userID]
	return at, ok, f.err
}

// recordStore is a tiny in-memory table shared by the academic fakes.
type recordStore[T any] struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]T
	lookups int
}

func newRecordStore[T any]() *recordStore[T] {
	return &recordStore[T]{nextID: 1, rows: map[int64]T{}}
}

func (s *recordStore[T]) insert(row T) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.rows[id] = row
	return id
}

func (s *recordStore[T]) put(id int64, row T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return common.ErrNotFound
	}
	s.rows[id] = row
	return nil
}

func (s *recordStore[T]) get(id int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	row, ok := s.rows[id]
	if !ok {
		var zero T
		return zero, common.ErrNotFound
	}
	return row, nil
}

func (s *recordStore[T]) remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *recordStore[T]) filter(keep func(T) bool) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []T{}
	for _, id := range ids {
		if keep == nil || keep(s.rows[id]) {
			out = append(out, s.rows[id])
		}
	}
	return out
}

type fakeStudentRepo struct{ *recordStore[model.Student] }

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{newRecordStore[model.Student]()}
}

func (r *fakeStudentRepo) Create(_ context.Context, s *model.Student) error {
	s.ID = r.insert(*s)
	return r.put(s.ID, *s)
}
func (r *fakeStudentRepo) Update(_ context.Context, s *model.Student) error { return r.put(s.ID, *s) }
func (r *fakeStudentRepo) Delete(_ context.Context, id int64) error       { return r.remove(id) }
func (r *fakeStudentRepo) FindByID(_ context.Context, id int64) (*model.Student, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
func (r *fakeStudentRepo) List(context.Context) ([]model.Student, error) { return r.filter(nil), nil }
func (r *fakeStudentRepo) ExistsByCPF(_ context.Context, cpf string) (bool, error) {
	return len(r.filter(func(s model.Student) bool { return s.CPF == cpf })) > 0, nil
}
func (r *fakeStudentRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	return len(r.filter(func(s model.Student) bool { return s.Name == name })) > 0, nil
}

type fakeProfessorRepo struct{ *recordStore[model.Professor] }

func newFakeProfessorRepo() *fakeProfessorRepo {
	return &fakeProfessorRepo{newRecordStore[model.Professor]()}
}

func (r *fakeProfessorRepo) Create(_ context.Context, p *model.Professor) error {
	p.ID = r.insert(*p)
	return r.put(p.ID, *p)
}
func (r *fakeProfessorRepo) Update(_ context.Context, p *model.Professor) error {
	return r.put(p.ID, *p)
}
func (r *fakeProfessorRepo) Delete(_ context.Context, id int64) error { return r.remove(id) }
func (r *fakeProfessorRepo) FindByID(_ context.Context, id int64) (*model.Professor, error) {
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
func (r *fakeProfessorRepo) List(context.Context) ([]model.Professor, error) {
	return r.filter(nil), nil
}

type fakeDisciplineRepo struct{ *recordStore[model.Discipline] }

func newFakeDisciplineRepo() *fakeDisciplineRepo {
	return &fakeDisciplineRepo{newRecordStore[model.Discipline]()}
}

func (r *fakeDisciplineRepo) Create(_ context.Context, d *model.Discipline) error {
	d.ID = r.insert(*d)
	return r.put(d.ID, *d)
}
func (r *fakeDisciplineRepo) Update(_ context.Context, d *model.Discipline) error {
	return r.put(d.ID, *d)
}
func (r *fakeDisciplineRepo) Delete(_ context.Context, id int64) error { return r.remove(id) }
func (r *fakeDisciplineRepo) FindByID(_ context.Context, id int64) (*model.Discipline, error) {
	d, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
func (r *fakeDisciplineRepo) FindBySlug(_ context.Context, slug string) (*model.Discipline, error) {
	found := r.filter(func(d model.Discipline) bool { return d.Slug == slug })
	if len(found) == 0 {
		return nil, common.ErrNotFound
	}
	return &found[0], nil
}
func (r *fakeDisciplineRepo) List(context.Context) ([]model.Discipline, error) {
	return r.filter(nil), nil
}

type fakeClassRepo struct{ *recordStore[model.Class] }

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{newRecordStore[model.Class]()}
}

func (r *fakeClassRepo) Create(_ context.Context, c *model.Class) error {
	c.ID = r.insert(*c)
	return r.put(c.ID, *c)
}
func (r *fakeClassRepo) Update(_ context.Context, c *model.Class) error { return r.put(c.ID, *c) }
func (r *fakeClassRepo) Delete(_ context.Context, id int64) error      { return r.remove(id) }
func (r *fakeClassRepo) FindByID(_ context.Context, id int64) (*model.Class, error) {
	c, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
func (r *fakeClassRepo) List(context.Context) ([]model.Class, error) { return r.filter(nil), nil }
func (r *fakeClassRepo) ListByDiscipline(_ context.Context, id int64) ([]model.Class, error) {
	return r.filter(func(c model.Class) bool { return c.DisciplineID == id }), nil
}
func (r *fakeClassRepo) ListByProfessor(_ context.Context, id int64) ([]model.Class, error) {
	return r.filter(func(c model.Class) bool { return c.ProfessorID == id }), nil
}

type fakeEnrollmentRepo struct{ *recordStore[model.Enrollment] }

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{newRecordStore[model.Enrollment]()}
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	e.ID = r.insert(*e)
	return r.put(e.ID, *e)
}
func (r *fakeEnrollmentRepo) Update(_ context.Context, e *model.Enrollment) error {
	return r.put(e.ID, *e)
}
func (r *fakeEnrollmentRepo) Delete(_ context.Context, id int64) error { return r.remove(id) }
func (r *fakeEnrollmentRepo) FindByID(_ context.Context, id int64) (*model.Enrollment, error) {
	e, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
func (r *fakeEnrollmentRepo) List(context.Context) ([]model.Enrollment, error) {
	return r.filter(nil), nil
}
func (r *fakeEnrollmentRepo) ListByStudent(_ context.Context, id int64) ([]model.Enrollment, error) {
	return r.filter(func(e model.Enrollment) bool { return e.StudentID == id }), nil
}
func (r *fakeEnrollmentRepo) ListByClass(_ context.Context, id int64) ([]model.Enrollment, error) {
	return r.filter(func(e model.Enrollment) bool { return e.ClassID == id }), nil
}
func (r *fakeEnrollmentRepo) ListByStudentAndClass(_ context.Context, studentID, classID int64) ([]model.Enrollment, error) {
	return r.filter(func(e model.Enrollment) bool { return e.StudentID == studentID && e.ClassID == classID }), nil
}

type fakeGradeRepo struct{ *recordStore[model.Grade] }

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{newRecordStore[model.Grade]()}
}

func (r *fakeGradeRepo) Create(_ context.Context, g *model.Grade) error {
	g.ID = r.insert(*g)
	return r.put(g.ID, *g)
}
func (r *fakeGradeRepo) Update(_ context.Context, g *model.Grade) error { return r.put(g.ID, *g) }
func (r *fakeGradeRepo) Delete(_ context.Context, id int64) error      { return r.remove(id) }
func (r *fakeGradeRepo) FindByID(_ context.Context, id int64) (*model.Grade, error) {
	g, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
func (r *fakeGradeRepo) List(context.Context) ([]model.Grade, error) { return r.filter(nil), nil }
func (r *fakeGradeRepo) ListByStudent(_ context.Context, id int64) ([]model.Grade, error) {
	return r.filter(func(g model.Grade) bool { return g.StudentID == id }), nil
}
func (r *fakeGradeRepo) ListByClass(_ context.Context, id int64) ([]model.Grade, error) {
	return r.filter(func(g model.Grade) bool { return g.ClassID == id }), nil
}
