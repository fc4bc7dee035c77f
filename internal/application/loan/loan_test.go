package loan

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql/mysqltest"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishLoanEvent(ctx context.Context, ev loan.Event) error {
	return m.Called(ctx, ev).Error(0)
}

func eventOfType(typ loan.EventType) interface{} {
	return mock.MatchedBy(func(ev loan.Event) bool { return ev.Type == typ })
}

type env struct {
	catalog catalog.Service
	loans   loan.Service
	users   user.Service
	repo    user.Repository
	events  *mockPublisher

	instances *InstancesUseCase
	mine      *MyInstancesUseCase
	export    *ExportUseCase
	stock     *StockUseCase

	staff  access.Principal
	alice  access.Principal
	bob    access.Principal
	bookID uint
}

var today = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	db := mysqltest.Open(t)
	ctx := context.Background()

	repo := mysql.NewUserRepository(db)
	users := user.NewService(repo)
	catalogSvc := catalog.NewService(mysql.NewGenreRepository(db), mysql.NewAuthorRepository(db), mysql.NewBookRepository(db), 3)
	loanSvc := loan.NewService(mysql.NewInstanceRepository(db), catalogSvc, users, 3)

	e := &env{
		catalog: catalogSvc,
		loans:   loanSvc,
		users:   users,
		repo:    repo,
		events:  new(mockPublisher),
	}
	e.instances = NewInstancesUseCase(loanSvc, catalogSvc, e.events, nil)
	e.instances.now = func() time.Time { return today }
	e.mine = NewMyInstancesUseCase(loanSvc, catalogSvc)
	e.mine.now = func() time.Time { return today }
	e.export = NewExportUseCase(loanSvc, catalogSvc, users)
	e.export.now = func() time.Time { return today }
	e.stock = NewStockUseCase(loanSvc, catalogSvc, mysql.NewTxManager(db), e.events, nil)
	e.stock.now = func() time.Time { return today }

	e.staff = e.user(t, "librarian", true)
	e.alice = e.user(t, "alice", false)
	e.bob = e.user(t, "bob", false)

	b, err := catalogSvc.CreateBook(ctx, catalog.BookInput{Title: "Dune", ISBN: "9780441013593"})
	require.NoError(t, err)
	e.bookID = b.ID
	return e
}

func (e *env) user(t *testing.T, name string, staff bool) access.Principal {
	t.Helper()
	u := user.NewUser(name, name+"@example.org", "$2a$04$hash", staff)
	require.NoError(t, e.repo.Create(context.Background(), u))
	return access.Principal{UserID: u.ID, Username: name, Staff: staff}
}

func (e *env) copy(t *testing.T) *InstanceView {
	t.Helper()
	e.events.On("PublishLoanEvent", mock.Anything, eventOfType(loan.EventCreated)).Return(nil).Once()
	v, err := e.instances.Create(context.Background(), e.staff, loan.CreateInput{BookID: &e.bookID})
	require.NoError(t, err)
	return v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInstances_NonStaffRejectedAndUnchanged(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inst := e.copy(t)

	before, err := e.loans.Get(ctx, inst.ID)
	require.NoError(t, err)

	_, err = e.instances.Update(ctx, e.alice, inst.ID, loan.UpdateInput{Status: "taken", ReaderID: &e.alice.UserID})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.True(t, apperrors.IsPermissionDenied(err))
	assert.False(t, apperrors.IsNotFound(err))

	_, err = e.instances.AssignReader(ctx, e.alice, inst.ID, loan.AssignInput{ReaderID: e.alice.UserID, DueBack: today})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = e.instances.Return(ctx, e.alice, inst.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = e.instances.Create(ctx, e.alice, loan.CreateInput{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = e.instances.List(ctx, e.alice, 1, loan.Filter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = e.instances.Get(ctx, e.alice, inst.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = e.instances.Update(ctx, access.Anonymous(), inst.ID, loan.UpdateInput{Status: "taken"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// a denied caller learns nothing about missing ids either
	_, err = e.instances.Update(ctx, e.alice, 999, loan.UpdateInput{Status: "taken"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	after, err := e.loans.Get(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Nil(t, after.ReaderID)
	assert.Nil(t, after.DueBack)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.UUID, after.UUID)

	e.events.AssertExpectations(t)
}

func TestInstances_AssignAndReturn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inst := e.copy(t)

	e.events.On("PublishLoanEvent", mock.Anything, mock.MatchedBy(func(ev loan.Event) bool {
		return ev.Type == loan.EventAssigned && ev.ReaderID != nil && *ev.ReaderID == e.alice.UserID && ev.ActorID == e.staff.UserID
	})).Return(nil).Once()

	assigned, err := e.instances.AssignReader(ctx, e.staff, inst.ID, loan.AssignInput{
		ReaderID: e.alice.UserID,
		DueBack:  date(2024, time.June, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, "taken", assigned.Status)
	assert.Equal(t, "Dune", assigned.BookTitle)
	assert.True(t, assigned.Overdue)
	assert.Equal(t, inst.UUID, assigned.UUID)

	e.events.On("PublishLoanEvent", mock.Anything, eventOfType(loan.EventReturned)).Return(nil).Once()
	returned, err := e.instances.Return(ctx, e.staff, inst.ID, &assigned.Version)
	require.NoError(t, err)
	assert.Equal(t, "available", returned.Status)
	assert.Nil(t, returned.ReaderID)
	assert.False(t, returned.Overdue)

	e.events.AssertExpectations(t)
}

func TestInstances_UpdateIsPermissive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inst := e.copy(t)

	e.events.On("PublishLoanEvent", mock.Anything, eventOfType(loan.EventUpdated)).Return(nil).Once()
	updated, err := e.instances.Update(ctx, e.staff, inst.ID, loan.UpdateInput{
		BookID:   &e.bookID,
		Status:   "administered",
		ReaderID: &e.bob.UserID,
	})
	require.NoError(t, err)
	assert.Equal(t, "administered", updated.Status)
	assert.Equal(t, e.bob.UserID, *updated.ReaderID)
	assert.Equal(t, inst.UUID, updated.UUID)
}

func TestInstances_PublishFailureKeepsWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inst := e.copy(t)

	e.events.On("PublishLoanEvent", mock.Anything, eventOfType(loan.EventAssigned)).
		Return(errors.New("broker down")).Once()

	v, err := e.instances.AssignReader(ctx, e.staff, inst.ID, loan.AssignInput{ReaderID: e.bob.UserID, DueBack: today})
	require.NoError(t, err)
	assert.Equal(t, "taken", v.Status)

	stored, err := e.loans.Get(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, e.bob.UserID, *stored.ReaderID)
}

func TestInstances_StaleVersion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inst := e.copy(t)
	stale := inst.Version

	e.events.On("PublishLoanEvent", mock.Anything, eventOfType(loan.EventAssigned)).Return(nil).Once()
	_, err := e.instances.AssignReader(ctx, e.staff, inst.ID, loan.AssignInput{ReaderID: e.alice.UserID, DueBack: today, Version: &stale})
	require.NoError(t, err)

	_, err = e.instances.Return(ctx, e.staff, inst.ID, &stale)
	assert.True(t, apperrors.IsConflict(err))
	e.events.AssertExpectations(t)
}

func TestInstances_ListFilters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		e.copy(t)
	}
	e.events.On("PublishLoanEvent", mock.Anything, eventOfType(loan.EventCreated)).Return(nil).Once()
	reserved, err := e.instances.Create(ctx, e.staff, loan.CreateInput{Status: "reserved"})
	require.NoError(t, err)

	page, err := e.instances.List(ctx, e.staff, 9, loan.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page.Number)
	assert.Len(t, page.Instances, 2)

	filtered, err := e.instances.List(ctx, e.staff, 1, loan.Filter{Status: "reserved"})
	require.NoError(t, err)
	require.Len(t, filtered.Instances, 1)
	assert.Equal(t, reserved.ID, filtered.Instances[0].ID)
	assert.Empty(t, filtered.Instances[0].BookTitle)

	byBook, err := e.instances.List(ctx, e.staff, 1, loan.Filter{BookID: &e.bookID})
	require.NoError(t, err)
	assert.Equal(t, int64(4), byBook.Page.Total)
}

func TestMyInstances_OnlyCallersCopies(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.events.On("PublishLoanEvent", mock.Anything, mock.Anything).Return(nil)

	late := e.copy(t)
	soon := e.copy(t)
	other := e.copy(t)
	e.copy(t)

	_, err := e.instances.AssignReader(ctx, e.staff, late.ID, loan.AssignInput{ReaderID: e.alice.UserID, DueBack: date(2024, time.July, 1)})
	require.NoError(t, err)
	_, err = e.instances.AssignReader(ctx, e.staff, soon.ID, loan.AssignInput{ReaderID: e.alice.UserID, DueBack: date(2024, time.June, 1), Status: "reserved"})
	require.NoError(t, err)
	_, err = e.instances.AssignReader(ctx, e.staff, other.ID, loan.AssignInput{ReaderID: e.bob.UserID, DueBack: date(2024, time.June, 20)})
	require.NoError(t, err)

	mine, err := e.mine.Execute(ctx, e.alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, soon.ID, mine[0].ID)
	assert.True(t, mine[0].Overdue)
	assert.Equal(t, late.ID, mine[1].ID)
	assert.False(t, mine[1].Overdue)
	for _, v := range mine {
		assert.Equal(t, e.alice.UserID, *v.ReaderID)
	}

	_, err = e.mine.Execute(ctx, access.Anonymous())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestExport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.events.On("PublishLoanEvent", mock.Anything, mock.Anything).Return(nil)

	lent := e.copy(t)
	e.copy(t)
	_, err := e.instances.AssignReader(ctx, e.staff, lent.ID, loan.AssignInput{ReaderID: e.alice.UserID, DueBack: date(2024, time.June, 1)})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := e.export.Execute(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Instances")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Dune", "Taken", "2024-06-01", "alice", "yes"}, rows[1][2:])
	assert.Equal(t, "Available", rows[2][3])
}

func TestStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.events.On("PublishLoanEvent", mock.Anything, eventOfType(loan.EventCreated)).Return(nil).Times(3)
	views, err := e.stock.Execute(ctx, e.staff, StockRequest{BookID: e.bookID, Count: 3, Status: "reserved"})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.NotEqual(t, views[0].UUID, views[1].UUID)
	for _, v := range views {
		assert.Equal(t, "Dune", v.BookTitle)
		assert.Equal(t, "reserved", v.Status)
	}
	e.events.AssertExpectations(t)

	_, err = e.stock.Execute(ctx, e.alice, StockRequest{BookID: e.bookID, Count: 1})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	for _, n := range []int{0, MaxStockCount + 1} {
		_, err = e.stock.Execute(ctx, e.staff, StockRequest{BookID: e.bookID, Count: n})
		assert.Contains(t, apperrors.GetAppError(err).Fields, "count")
	}

	_, err = e.stock.Execute(ctx, e.staff, StockRequest{BookID: 999, Count: 2})
	assert.True(t, apperrors.IsValidation(err))

	total, err := e.loans.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
