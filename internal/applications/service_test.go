package applications

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/filestore"
	"github.com/jonathan/job-portal/internal/jobs"
	"github.com/jonathan/job-portal/internal/notify"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/store/storetest"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var day = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

type memFiles struct {
	mu      sync.Mutex
	files   map[string]string
	failOn  string
	removed []string
}

func newMemFiles() *memFiles { return &memFiles{files: map[string]string{}} }

func (f *memFiles) Save(_ context.Context, name string, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == f.failOn {
		return "", errors.New("disk full")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := "ref_" + name
	f.files[ref] = string(b)
	return ref, nil
}

func (f *memFiles) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[ref]
	if !ok {
		return nil, filestore.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *memFiles) Remove(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, ref)
	f.removed = append(f.removed, ref)
	return nil
}

// failingInserts rejects application inserts inside transactions.
type failingInserts struct{ store.Store }

func (failingInserts) CreateApplication(context.Context, *types.Application) error {
	return errors.New("connection reset")
}

func (f failingInserts) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	return f.Store.WithTx(ctx, func(tx store.Store) error { return fn(failingInserts{tx}) })
}

type harness struct {
	fx        *storetest.Fixture
	jobs      *jobs.Service
	svc       *Service
	notifier  *recordingNotifier
	files     *memFiles
	employer  context.Context
	candidate context.Context
	other     context.Context
	job       *types.Job
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{fx: storetest.New(t), notifier: &recordingNotifier{}, files: newMemFiles()}
	logger := zap.NewNop().Sugar()
	h.jobs = jobs.NewService(h.fx.Store, nil, logger, jobs.WithClock(func() time.Time { return day }))
	h.svc = NewService(h.fx.Store, h.files, h.jobs, h.notifier, logger)
	_, h.employer = h.fx.Employer(t, "hr@acme.test", "Acme")
	_, h.candidate = h.fx.Candidate(t, "ann@mail.test", "Ann")
	_, h.other = h.fx.Candidate(t, "bob@mail.test", "Bob")
	h.job = h.createJob(t, "Go Developer", 5)
	return h
}

func (h *harness) createJob(t *testing.T, title string, vacancy int) *types.Job {
	t.Helper()
	job, err := h.jobs.CreateJob(h.employer, types.JobInput{
		Title:              title,
		Location:           "Remote",
		ExperienceRequired: storetest.IntPtr(3),
		CategoryID:         h.fx.Engineering.ID,
		OpenFrom:           types.NewDate(day),
		Vacancy:            vacancy,
		Skills:             []string{"Go"},
	})
	require.NoError(t, err)
	return job
}

func (h *harness) apply(ctx context.Context, experience int) (*types.Application, error) {
	return h.svc.Apply(ctx, h.job.ID, ApplyRequest{ApplicationInput: types.ApplicationInput{Experience: experience}})
}

func (h *harness) storedJob(t *testing.T) *types.Job {
	t.Helper()
	job, err := h.fx.Store.GetJob(context.Background(), h.job.ID)
	require.NoError(t, err)
	return job
}

func TestApply_ExperienceGate(t *testing.T) {
	h := newHarness(t)

	_, err := h.apply(h.candidate, 2)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.True(t, apperr.Is(err, apperr.CodeNotEnoughExperience))

	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)
	assert.Equal(t, "Applied", app.StatusName)
	assert.Equal(t, types.StatusRoleApplied, app.StatusRole)
	assert.Equal(t, h.job.ID, app.JobID)
	assert.False(t, app.AppliedAt.IsZero())

	sent := h.notifier.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "hr@acme.test", sent[0].ToAddress)
	assert.Equal(t, "Application Received for Go Developer", sent[0].Subject)
}

func TestApply_AlreadyApplied(t *testing.T) {
	h := newHarness(t)

	_, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	_, err = h.apply(h.candidate, 4)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.True(t, apperr.Is(err, apperr.CodeAlreadyApplied))

	_, err = h.apply(h.other, 4)
	assert.NoError(t, err)
}

func TestApply_AfterWithdrawal(t *testing.T) {
	h := newHarness(t)

	first, err := h.apply(h.candidate, 4)
	require.NoError(t, err)
	_, err = h.svc.Withdraw(h.candidate, first.ID)
	require.NoError(t, err)

	second, err := h.apply(h.candidate, 4)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestApply_AfterRejection(t *testing.T) {
	h := newHarness(t)

	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)
	_, err = h.svc.ChangeStatus(h.employer, app.ID, h.fx.Rejected.ID)
	require.NoError(t, err)

	_, err = h.apply(h.candidate, 4)
	assert.True(t, apperr.Is(err, apperr.CodeAlreadyApplied))
}

func TestApply_JobNotOpen(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Apply(h.candidate, 404, ApplyRequest{})
	assert.True(t, apperr.Is(err, apperr.CodeJobNotOpen))

	require.NoError(t, h.jobs.DeleteJob(h.employer, h.job.ID))
	_, err = h.apply(h.candidate, 4)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestApply_RequiresCandidate(t *testing.T) {
	h := newHarness(t)

	_, err := h.apply(h.employer, 4)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = h.apply(context.Background(), 4)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestApply_StoresAttachments(t *testing.T) {
	h := newHarness(t)

	app, err := h.svc.Apply(h.candidate, h.job.ID, ApplyRequest{
		ApplicationInput: types.ApplicationInput{Experience: 4, Note: "Hello"},
		CoverLetter:      &Attachment{Name: "cover.pdf", Size: 5, Content: strings.NewReader("cover")},
		Resume:           &Attachment{Name: "cv.docx", Size: 2, Content: strings.NewReader("cv")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ref_cover.pdf", app.CoverLetterName)
	assert.Equal(t, "ref_cv.docx", app.ResumeName)
	assert.Equal(t, "cover", h.files.files["ref_cover.pdf"])
}

func TestApply_RejectsBadAttachment(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Apply(h.candidate, h.job.ID, ApplyRequest{
		ApplicationInput: types.ApplicationInput{Experience: 4},
		Resume:           &Attachment{Name: "cv.exe", Size: 2, Content: strings.NewReader("cv")},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = h.svc.Apply(h.candidate, h.job.ID, ApplyRequest{
		ApplicationInput: types.ApplicationInput{Experience: 4},
		Resume:           &Attachment{Name: "cv.pdf", Size: DefaultMaxAttachmentBytes + 1, Content: strings.NewReader("cv")},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, h.files.files)
}

func TestApply_FileStoreFailureLeavesNoApplication(t *testing.T) {
	h := newHarness(t)
	h.files.failOn = "cv.pdf"

	_, err := h.svc.Apply(h.candidate, h.job.ID, ApplyRequest{
		ApplicationInput: types.ApplicationInput{Experience: 4},
		CoverLetter:      &Attachment{Name: "cover.pdf", Size: 5, Content: strings.NewReader("cover")},
		Resume:           &Attachment{Name: "cv.pdf", Size: 2, Content: strings.NewReader("cv")},
	})
	assert.Equal(t, apperr.KindInfrastructure, apperr.KindOf(err))
	assert.Empty(t, h.files.files)
	assert.Equal(t, []string{"ref_cover.pdf"}, h.files.removed)

	n, err := h.fx.Store.CountApplications(context.Background(), types.ApplicationFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApply_InsertFailureRemovesFiles(t *testing.T) {
	h := newHarness(t)
	svc := NewService(failingInserts{h.fx.Store}, h.files, h.jobs, h.notifier, zap.NewNop().Sugar())

	_, err := svc.Apply(h.candidate, h.job.ID, ApplyRequest{
		ApplicationInput: types.ApplicationInput{Experience: 4},
		Resume:           &Attachment{Name: "cv.pdf", Size: 2, Content: strings.NewReader("cv")},
	})
	assert.Equal(t, apperr.KindInfrastructure, apperr.KindOf(err))
	assert.Empty(t, h.files.files)
	assert.Empty(t, h.notifier.messages())
}

func TestChangeStatus_HireReducesVacancyOnce(t *testing.T) {
	h := newHarness(t)
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	updated, err := h.svc.ChangeStatus(h.employer, app.ID, h.fx.Hired.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hired", updated.StatusName)

	job := h.storedJob(t)
	assert.Equal(t, 4, job.Vacancy)
	assert.True(t, job.IsActive)

	sent := h.notifier.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "ann@mail.test", sent[1].ToAddress)
	assert.Equal(t, "Application status updated", sent[1].Subject)
	assert.Contains(t, sent[1].HTMLBody, "Hired")

	_, err = h.svc.ChangeStatus(h.employer, app.ID, h.fx.Hired.ID)
	assert.True(t, apperr.Is(err, apperr.CodeApplicationFinalized))
	assert.Equal(t, 4, h.storedJob(t).Vacancy)
}

func TestChangeStatus_ConcurrentHires(t *testing.T) {
	h := newHarness(t)
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.svc.ChangeStatus(h.employer, app.ID, h.fx.Hired.ID); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 4, h.storedJob(t).Vacancy)
}

func TestChangeStatus_LastSeatClosesJob(t *testing.T) {
	h := newHarness(t)
	h.job = h.createJob(t, "Staff Engineer", 1)
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	_, err = h.svc.ChangeStatus(h.employer, app.ID, h.fx.Hired.ID)
	require.NoError(t, err)

	job := h.storedJob(t)
	assert.Zero(t, job.Vacancy)
	assert.False(t, job.IsActive)

	_, err = h.apply(h.other, 4)
	assert.True(t, apperr.Is(err, apperr.CodeJobNotOpen))
}

func TestChangeStatus_CustomPipeline(t *testing.T) {
	h := newHarness(t)
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	_, err = h.svc.ChangeStatus(h.employer, app.ID, h.fx.Applied.ID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatusTransition))

	updated, err := h.svc.ChangeStatus(h.employer, app.ID, h.fx.Interview.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusRoleCustom, updated.StatusRole)

	_, err = h.svc.ChangeStatus(h.employer, app.ID, h.fx.Interview.ID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatusTransition))

	_, err = h.svc.ChangeStatus(h.employer, app.ID, h.fx.Rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, h.storedJob(t).Vacancy)
}

func TestChangeStatus_EmployerCannotWithdraw(t *testing.T) {
	h := newHarness(t)
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	_, err = h.svc.ChangeStatus(h.employer, app.ID, h.fx.Withdrawn.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.True(t, apperr.Is(err, apperr.CodeStatusChangeNotPermitted))
}

func TestChangeStatus_WithdrawnIsFinal(t *testing.T) {
	h := newHarness(t)
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)
	_, err = h.svc.Withdraw(h.candidate, app.ID)
	require.NoError(t, err)

	_, err = h.svc.ChangeStatus(h.employer, app.ID, h.fx.Hired.ID)
	assert.True(t, apperr.Is(err, apperr.CodeApplicationFinalized))
	assert.Equal(t, 5, h.storedJob(t).Vacancy)
}

func TestChangeStatus_Ownership(t *testing.T) {
	h := newHarness(t)
	_, rival := h.fx.Employer(t, "hr@globex.test", "Globex")
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	_, err = h.svc.ChangeStatus(rival, app.ID, h.fx.Hired.ID)
	assert.True(t, apperr.Is(err, apperr.CodeJobNotByEmployer))

	_, err = h.svc.ChangeStatus(h.employer, 404, h.fx.Hired.ID)
	assert.True(t, apperr.Is(err, apperr.CodeApplicationNotFound))

	_, err = h.svc.ChangeStatus(h.employer, app.ID, 404)
	assert.True(t, apperr.Is(err, apperr.CodeStatusNotFound))

	_, err = h.svc.ChangeStatus(h.candidate, app.ID, h.fx.Hired.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestWithdraw(t *testing.T) {
	h := newHarness(t)
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	_, err = h.svc.Withdraw(h.other, app.ID)
	assert.True(t, apperr.Is(err, apperr.CodeApplicationNotByCandidate))

	_, err = h.svc.Withdraw(h.employer, app.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	withdrawn, err := h.svc.Withdraw(h.candidate, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusRoleWithdrawn, withdrawn.StatusRole)

	_, err = h.svc.Withdraw(h.candidate, app.ID)
	assert.True(t, apperr.Is(err, apperr.CodeApplicationFinalized))
}

func TestListings(t *testing.T) {
	h := newHarness(t)
	admin := h.fx.Admin(t, "root@portal.test")
	_, rival := h.fx.Employer(t, "hr@globex.test", "Globex")

	mine, err := h.apply(h.candidate, 4)
	require.NoError(t, err)
	theirs, err := h.apply(h.other, 5)
	require.NoError(t, err)
	_, err = h.svc.Withdraw(h.other, theirs.ID)
	require.NoError(t, err)

	page, err := h.svc.ListByJob(h.employer, h.job.ID, types.ApplicationQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, mine.ID, page.Items[0].ID)
	assert.Equal(t, types.DefaultApplicationPageSize, page.PageSize)

	n, err := h.svc.CountForJob(h.employer, h.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = h.svc.ListByJob(rival, h.job.ID, types.ApplicationQuery{})
	assert.True(t, apperr.Is(err, apperr.CodeJobNotByEmployer))

	page, err = h.svc.ListByJob(admin, h.job.ID, types.ApplicationQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = h.svc.ListMine(h.other, types.ApplicationQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	page, err = h.svc.ListAll(admin, types.ApplicationQuery{Status: "withdrawn"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, theirs.ID, page.Items[0].ID)

	page, err = h.svc.ListAll(admin, types.ApplicationQuery{Search: "ann"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = h.svc.ListAll(h.employer, types.ApplicationQuery{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestGetApplication(t *testing.T) {
	h := newHarness(t)
	admin := h.fx.Admin(t, "root@portal.test")
	_, rival := h.fx.Employer(t, "hr@globex.test", "Globex")
	app, err := h.apply(h.candidate, 4)
	require.NoError(t, err)

	for _, ctx := range []context.Context{h.candidate, h.employer, admin} {
		got, err := h.svc.GetApplication(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ann", got.CandidateName)
		assert.Equal(t, "Go Developer", got.JobTitle)
	}

	_, err = h.svc.GetApplication(h.other, app.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = h.svc.GetApplication(rival, app.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = h.svc.GetApplication(admin, 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
