package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthscreen/internal/agent"
	"healthscreen/internal/capture"
	"healthscreen/internal/email"
	"healthscreen/internal/patient"
	"healthscreen/pkg/logger"
)

const testDelay = 20 * time.Millisecond

// Compile-time checks that the mocks satisfy their contracts.
var (
	_ agent.Assessor     = (*mockAssessor)(nil)
	_ email.Service      = (*mockMailer)(nil)
	_ capture.Microphone = capture.DeniedMicrophone{}
)

type mockAssessor struct {
	AssessFunc func(ctx context.Context, text string) (agent.Assessment, error)
	callCount  int32
}

func (m *mockAssessor) Assess(ctx context.Context, text string) (agent.Assessment, error) {
	atomic.AddInt32(&m.callCount, 1)
	if m.AssessFunc != nil {
		return m.AssessFunc(ctx, text)
	}
	return agent.Assessment{
		Symptoms:  []string{"fever"},
		Diagnosis: "Suspected common cold",
		Reply:     "Please rest and drink water.",
	}, nil
}

type mockMailer struct {
	SendCustomFunc func(ctx context.Context, to, subject, content string) error
	sent           []string
}

func (m *mockMailer) SendCustom(ctx context.Context, to, subject, content string) error {
	m.sent = append(m.sent, to)
	if m.SendCustomFunc != nil {
		return m.SendCustomFunc(ctx, to, subject, content)
	}
	return nil
}

type testEnv struct {
	svc    Service
	sched  *Scheduler
	mailer *mockMailer
}

func newTestEnv(t *testing.T, mic capture.Microphone, legacy bool) *testEnv {
	t.Helper()
	log := logger.NewLogger(nil)
	sched := NewScheduler(legacy)
	registry := NewRegistry(time.Minute, sched, log)
	mailer := &mockMailer{}
	svc := NewService(registry, sched, &mockAssessor{}, mic, mailer, testDelay, log)
	return &testEnv{svc: svc, sched: sched, mailer: mailer}
}

func waitForMessages(t *testing.T, sess *Session, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(sess.Messages()) == n
	}, time.Second, 5*time.Millisecond, "expected %d messages, got %d", n, len(sess.Messages()))
}

func TestSubmitText_AppendsUserThenAssistant(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)
	seedRecords := len(sess.History())

	msg, err := env.svc.SubmitText(ctx, sess.ID, "I have a headache")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.True(t, msg.IsUser)
	assert.Equal(t, "I have a headache", msg.Text)

	// Before the delay elapses the user message is the last (and only) entry.
	messages := sess.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, msg.ID, messages[0].ID)
	assert.Len(t, sess.History(), seedRecords)

	waitForMessages(t, sess, 2)

	messages = sess.Messages()
	assert.True(t, messages[0].IsUser)
	assert.False(t, messages[1].IsUser)
	assert.Equal(t, "Please rest and drink water.", messages[1].Text)

	// The medical record lands with the user's text as notes, before the reply.
	history := sess.History()
	require.Len(t, history, seedRecords+1)
	assert.Equal(t, "I have a headache", history[seedRecords].Notes)
	assert.Equal(t, "Suspected common cold", history[seedRecords].Diagnosis)
}

func TestSubmitText_EmptyOrWhitespaceIsNoOp(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)
	seedRecords := len(sess.History())

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := env.svc.SubmitText(ctx, sess.ID, text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	time.Sleep(3 * testDelay)
	assert.Empty(t, sess.Messages())
	assert.Len(t, sess.History(), seedRecords)
}

func TestSubmitText_UnknownSession(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	_, err := env.svc.SubmitText(context.Background(), uuid.New(), "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitImage_Valid(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	msg, err := env.svc.SubmitImage(ctx, sess.ID, ImageUpload{
		Name:        "rash.png",
		ContentType: "image/png",
		Size:        1024,
		Data:        []byte("png-bytes"),
	})
	require.NoError(t, err)
	assert.True(t, msg.IsUser)
	assert.NotEmpty(t, msg.Image)
	require.NotNil(t, msg.File)
	assert.Equal(t, "rash.png", msg.File.Name)

	waitForMessages(t, sess, 2)
	assert.False(t, sess.Messages()[1].IsUser)
}

func TestSubmitImage_Rejections(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	_, err := env.svc.SubmitImage(ctx, sess.ID, ImageUpload{
		Name:        "report.pdf",
		ContentType: "application/pdf",
		Size:        1024,
	})
	assert.ErrorIs(t, err, ErrNotAnImage)

	_, err = env.svc.SubmitImage(ctx, sess.ID, ImageUpload{
		Name:        "huge.png",
		ContentType: "image/png",
		Size:        MaxImageBytes + 1,
	})
	assert.ErrorIs(t, err, ErrImageTooLarge)

	// Both violations at once surface both errors.
	_, err = env.svc.SubmitImage(ctx, sess.ID, ImageUpload{
		Name:        "huge.pdf",
		ContentType: "application/pdf",
		Size:        MaxImageBytes + 1,
	})
	assert.ErrorIs(t, err, ErrNotAnImage)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	time.Sleep(3 * testDelay)
	assert.Empty(t, sess.Messages(), "rejected uploads must not mutate state")
}

func TestSubmitImage_SizeAtLimitIsAccepted(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	_, err := env.svc.SubmitImage(ctx, sess.ID, ImageUpload{
		Name:        "exact.png",
		ContentType: "image/png",
		Size:        MaxImageBytes,
	})
	assert.NoError(t, err)
}

func TestCapture_RoundTrip(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	require.NoError(t, env.svc.StartCapture(ctx, sess.ID))
	assert.True(t, sess.Recording())
	assert.False(t, sess.Processing())

	require.NoError(t, env.svc.PushChunk(ctx, sess.ID, []byte("chunk-1")))
	require.NoError(t, env.svc.PushChunk(ctx, sess.ID, []byte("chunk-2")))

	require.NoError(t, env.svc.StopCapture(ctx, sess.ID))
	assert.False(t, sess.Recording())
	assert.True(t, sess.Processing(), "processing begins only after recording ends")

	waitForMessages(t, sess, 1)
	require.Eventually(t, func() bool { return !sess.Processing() }, time.Second, 5*time.Millisecond)

	messages := sess.Messages()
	assert.True(t, messages[0].IsUser)
	assert.Equal(t, voiceMemoText, messages[0].Text)
	assert.False(t, sess.Recording())
}

func TestCapture_DeniedLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t, capture.DeniedMicrophone{}, false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	err := env.svc.StartCapture(ctx, sess.ID)
	assert.ErrorIs(t, err, capture.ErrMicrophoneDenied)
	assert.False(t, sess.Recording())
	assert.Empty(t, sess.Messages())
}

func TestCapture_StopWithoutStart(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	assert.ErrorIs(t, env.svc.StopCapture(ctx, sess.ID), ErrNotRecording)
	assert.ErrorIs(t, env.svc.PushChunk(ctx, sess.ID, []byte("x")), ErrNotRecording)
}

func TestCloseSession_CancelsPendingEffects(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	_, err := env.svc.SubmitText(ctx, sess.ID, "about to vanish")
	require.NoError(t, err)
	require.Equal(t, 1, env.sched.Pending(sess.ID))

	require.NoError(t, env.svc.CloseSession(ctx, sess.ID))
	assert.Zero(t, env.sched.Pending(sess.ID))

	time.Sleep(3 * testDelay)
	assert.Len(t, sess.Messages(), 1, "cancelled effect must not append the assistant reply")
}

func TestLegacyTimers_EffectsSurviveTeardown(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), true)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	_, err := env.svc.SubmitText(ctx, sess.ID, "legacy fire-and-forget")
	require.NoError(t, err)
	require.NoError(t, env.svc.CloseSession(ctx, sess.ID))

	waitForMessages(t, sess, 2)
}

func TestSearchFacilities_GatedOnLocationGrant(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	_, err := env.svc.SearchFacilities(ctx, sess.ID, "")
	assert.ErrorIs(t, err, ErrLocationRequired)

	err = env.svc.GrantLocation(ctx, sess.ID, false, nil)
	assert.ErrorIs(t, err, capture.ErrLocationDenied)

	_, err = env.svc.SearchFacilities(ctx, sess.ID, "")
	assert.ErrorIs(t, err, ErrLocationRequired, "a denial must not open the gate")

	require.NoError(t, env.svc.GrantLocation(ctx, sess.ID, true, &capture.Position{Latitude: 13.75, Longitude: 100.5}))

	all, err := env.svc.SearchFacilities(ctx, sess.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	hospitals, err := env.svc.SearchFacilities(ctx, sess.ID, "hospital")
	require.NoError(t, err)
	for _, f := range hospitals {
		assert.True(t, strings.Contains(strings.ToLower(f.Name), "hospital"))
	}
}

func TestEmailRecord_ConfirmsPatientAddress(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	history := sess.History()
	require.NotEmpty(t, history)

	confirmation, err := env.svc.EmailRecord(ctx, sess.ID, history[0].ID)
	require.NoError(t, err)
	assert.Contains(t, confirmation, sess.Profile().Email)
	assert.Equal(t, []string{sess.Profile().Email}, env.mailer.sent)
}

func TestSelectView(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	assert.Equal(t, ViewChat, sess.ActiveView().View)

	require.NoError(t, env.svc.SelectView(ctx, sess.ID, ViewSelection{View: ViewHistory}))
	assert.Equal(t, ViewHistory, sess.ActiveView().View)

	require.NoError(t, env.svc.SelectView(ctx, sess.ID, ViewSelection{View: ViewSymptomDetail, CategoryID: "fever"}))
	assert.Equal(t, ViewSelection{View: ViewSymptomDetail, CategoryID: "fever"}, sess.ActiveView())

	assert.ErrorIs(t, env.svc.SelectView(ctx, sess.ID, ViewSelection{View: ViewSymptomDetail, CategoryID: "nope"}), ErrUnknownCategory)
	assert.ErrorIs(t, env.svc.SelectView(ctx, sess.ID, ViewSelection{View: "sidebar"}), ErrUnknownView)

	// Back always returns to the chat view, clearing the category.
	require.NoError(t, env.svc.SelectView(ctx, sess.ID, ViewSelection{View: ViewChat, CategoryID: "fever"}))
	assert.Equal(t, ViewSelection{View: ViewChat}, sess.ActiveView())
}

func TestResolveRecord_KeepsConcurrentAppends(t *testing.T) {
	log := logger.NewLogger(nil)
	sched := NewScheduler(false)
	registry := NewRegistry(time.Minute, sched, log)
	svc := NewService(registry, sched, &mockAssessor{}, capture.NewMicrophone(), &mockMailer{}, time.Millisecond, log)

	ctx := context.Background()
	sess := svc.CreateSession(ctx)
	seed := len(sess.History())
	activeID := sess.History()[1].ID

	// Hammer the resolve path for as long as delayed effects keep appending.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := svc.ResolveRecord(ctx, sess.ID, activeID); err != nil {
				assert.NoError(t, err)
				return
			}
		}
	}()

	const submissions = 100
	for i := 0; i < submissions; i++ {
		_, err := svc.SubmitText(ctx, sess.ID, "recurring headache")
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return len(sess.History()) == seed+submissions
	}, 5*time.Second, 5*time.Millisecond, "append-only history must keep every record")
	close(stop)
	<-done
}

func TestStopCapture_ConcurrentStopsScheduleOneAcknowledgment(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)
	require.NoError(t, env.svc.StartCapture(ctx, sess.ID))

	var wg sync.WaitGroup
	var stopped int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := env.svc.StopCapture(ctx, sess.ID); err == nil {
				atomic.AddInt32(&stopped, 1)
			} else {
				assert.ErrorIs(t, err, ErrNotRecording)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&stopped), "exactly one stop wins")

	waitForMessages(t, sess, 1)
	time.Sleep(3 * testDelay)
	assert.Len(t, sess.Messages(), 1, "a single acknowledgment is scheduled")
}

func TestResolveRecord(t *testing.T) {
	env := newTestEnv(t, capture.NewMicrophone(), false)
	ctx := context.Background()
	sess := env.svc.CreateSession(ctx)

	var activeID uuid.UUID
	for _, r := range sess.History() {
		if r.Status == patient.StatusActive {
			activeID = r.ID
		}
	}
	require.NotEqual(t, uuid.Nil, activeID)

	record, err := env.svc.ResolveRecord(ctx, sess.ID, activeID)
	require.NoError(t, err)
	assert.Equal(t, patient.StatusResolved, record.Status)

	updated, err := patient.FindRecord(sess.History(), activeID)
	require.NoError(t, err)
	assert.Equal(t, patient.StatusResolved, updated.Status)
}
