package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"healthscreen/internal/agent"
	"healthscreen/internal/capture"
	"healthscreen/internal/email"
	"healthscreen/internal/facility"
	"healthscreen/internal/patient"
	"healthscreen/internal/symptom"
	"healthscreen/pkg/logger"
)

// MaxImageBytes is the upload limit for symptom photos.
const MaxImageBytes = 5 * 1024 * 1024

const (
	imageAckReply = "We have received your picture and will analyse the symptoms it shows."
	voiceMemoText = "Your voice memo has been recorded."
)

// ImageUpload is a candidate photo attachment.
type ImageUpload struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Service is the simulated response pipeline plus the session-scoped
// operations built on top of the state store.
type Service interface {
	CreateSession(ctx context.Context) *Session
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	CloseSession(ctx context.Context, id uuid.UUID) error

	SelectView(ctx context.Context, id uuid.UUID, sel ViewSelection) error

	SubmitText(ctx context.Context, id uuid.UUID, text string) (*Message, error)
	SubmitImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*Message, error)
	StartCapture(ctx context.Context, id uuid.UUID) error
	PushChunk(ctx context.Context, id uuid.UUID, chunk []byte) error
	StopCapture(ctx context.Context, id uuid.UUID) error

	GrantLocation(ctx context.Context, id uuid.UUID, granted bool, pos *capture.Position) error
	SearchFacilities(ctx context.Context, id uuid.UUID, query string) ([]facility.Facility, error)

	History(ctx context.Context, id uuid.UUID, all bool) ([]patient.MedicalRecord, error)
	EmailRecord(ctx context.Context, id, recordID uuid.UUID) (string, error)
	ResolveRecord(ctx context.Context, id, recordID uuid.UUID) (*patient.MedicalRecord, error)
}

type service struct {
	registry *Registry
	sched    *Scheduler
	assessor agent.Assessor
	mic      capture.Microphone
	mailer   email.Service
	delay    time.Duration
	log      *logger.Logger
}

func NewService(registry *Registry, sched *Scheduler, assessor agent.Assessor, mic capture.Microphone, mailer email.Service, delay time.Duration, log *logger.Logger) Service {
	return &service{
		registry: registry,
		sched:    sched,
		assessor: assessor,
		mic:      mic,
		mailer:   mailer,
		delay:    delay,
		log:      log,
	}
}

func (s *service) CreateSession(ctx context.Context) *Session {
	sess := s.registry.Create(patient.DemoProfile())
	s.log.Info("session created", "session_id", sess.ID.String())
	return sess
}

func (s *service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.registry.Get(id)
}

func (s *service) CloseSession(ctx context.Context, id uuid.UUID) error {
	if err := s.registry.Delete(id); err != nil {
		return err
	}
	s.log.Info("session closed", "session_id", id.String())
	return nil
}

func (s *service) SelectView(ctx context.Context, id uuid.UUID, sel ViewSelection) error {
	sess, err := s.registry.Get(id)
	if err != nil {
		return err
	}

	switch sel.View {
	case ViewChat, ViewHistory, ViewCertificate, ViewSendToDoctor:
		sel.CategoryID = ""
	case ViewSymptomDetail:
		if _, ok := symptom.Find(symptom.Catalog(), sel.CategoryID); !ok {
			return ErrUnknownCategory
		}
	default:
		return ErrUnknownView
	}

	sess.SelectView(sel)
	return nil
}

// SubmitText appends the user message synchronously, then schedules the
// assessment record and the assistant reply after the configured delay. The
// user message always precedes its assistant message; effects of concurrent
// submissions race on timer order.
func (s *service) SubmitText(ctx context.Context, id uuid.UUID, text string) (*Message, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := sess.AppendMessage(text, true, "", nil)

	s.sched.Schedule(sess.ID, s.delay, func() {
		assessment, err := s.assessor.Assess(context.Background(), text)
		if err != nil {
			s.log.Error(err, "assessment failed", "session_id", sess.ID.String())
			return
		}

		sess.AppendRecord(patient.MedicalRecord{
			ID:        uuid.New(),
			Date:      time.Now(),
			Symptoms:  assessment.Symptoms,
			Diagnosis: assessment.Diagnosis,
			Notes:     text,
			Severity:  assessment.Severity,
			Status:    patient.StatusActive,
		})
		sess.AppendMessage(assessment.Reply, false, "", nil)
	})

	return &msg, nil
}

// SubmitImage validates the upload, stores it, appends the user message and
// schedules the canned acknowledgment.
func (s *service) SubmitImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*Message, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	var verr *multierror.Error
	if !strings.HasPrefix(upload.ContentType, "image/") {
		verr = multierror.Append(verr, ErrNotAnImage)
	}
	if upload.Size > MaxImageBytes {
		verr = multierror.Append(verr, ErrImageTooLarge)
	}
	if err := verr.ErrorOrNil(); err != nil {
		return nil, err
	}

	fileID := sess.StoreFile(upload.Name, upload.ContentType, upload.Data)
	url := fmt.Sprintf("/api/session/%s/files/%s", sess.ID, fileID)

	msg := sess.AppendMessage("Uploaded image: "+upload.Name, true, url, &FileAttachment{
		Name:        upload.Name,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		URL:         url,
	})

	s.sched.Schedule(sess.ID, s.delay, func() {
		sess.AppendMessage(imageAckReply, false, "", nil)
	})

	return &msg, nil
}

// StartCapture requests microphone access and, when granted, begins buffering
// chunks. On denial nothing changes.
func (s *service) StartCapture(ctx context.Context, id uuid.UUID) error {
	sess, err := s.registry.Get(id)
	if err != nil {
		return err
	}
	if sess.Recording() {
		return ErrAlreadyRecording
	}
	if err := s.mic.Request(ctx); err != nil {
		return errors.Wrap(err, "capture")
	}
	return sess.BeginRecording()
}

func (s *service) PushChunk(ctx context.Context, id uuid.UUID, chunk []byte) error {
	sess, err := s.registry.Get(id)
	if err != nil {
		return err
	}
	return sess.PushChunk(chunk)
}

// StopCapture ends the recording, concatenates and discards the buffered
// chunks, and schedules the fixed acknowledgment that also clears the
// processing flag. Processing begins only after recording has ended; of two
// concurrent stops only one schedules an acknowledgment.
func (s *service) StopCapture(ctx context.Context, id uuid.UUID) error {
	sess, err := s.registry.Get(id)
	if err != nil {
		return err
	}

	payload, err := sess.FinishRecording()
	if err != nil {
		return err
	}
	s.log.Debug("capture stopped", "session_id", sess.ID.String(), "payload_bytes", len(payload))

	s.sched.Schedule(sess.ID, s.delay, func() {
		sess.AppendMessage(voiceMemoText, true, "", nil)
		sess.SetProcessing(false)
	})

	return nil
}

func (s *service) GrantLocation(ctx context.Context, id uuid.UUID, granted bool, pos *capture.Position) error {
	sess, err := s.registry.Get(id)
	if err != nil {
		return err
	}
	if !granted {
		return capture.ErrLocationDenied
	}
	sess.GrantLocation(pos)
	return nil
}

// SearchFacilities filters the static directory by name. The query interface
// is gated on a prior location grant.
func (s *service) SearchFacilities(ctx context.Context, id uuid.UUID, query string) ([]facility.Facility, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if !sess.LocationGranted() {
		return nil, ErrLocationRequired
	}
	return facility.Search(facility.Directory(), query), nil
}

func (s *service) History(ctx context.Context, id uuid.UUID, all bool) ([]patient.MedicalRecord, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	records := sess.History()
	if all {
		return records, nil
	}
	return patient.CurrentMonthRecords(records, time.Now()), nil
}

// EmailRecord sends one record to the patient's own address and returns the
// confirmation shown to the user. Delivery is synchronous from the caller's
// point of view; the configured mailer decides whether anything really leaves
// the process.
func (s *service) EmailRecord(ctx context.Context, id, recordID uuid.UUID) (string, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return "", err
	}

	record, err := patient.FindRecord(sess.History(), recordID)
	if err != nil {
		return "", err
	}

	profile := sess.Profile()
	subject := "Your medical record: " + record.Diagnosis
	body := fmt.Sprintf("Diagnosis: %s\nSymptoms: %s\nNotes: %s\n",
		record.Diagnosis, strings.Join(record.Symptoms, ", "), record.Notes)

	if err := s.mailer.SendCustom(ctx, profile.Email, subject, body); err != nil {
		return "", errors.Wrap(err, "send record email")
	}

	return fmt.Sprintf("Your medical record has been sent to %s.", profile.Email), nil
}

func (s *service) ResolveRecord(ctx context.Context, id, recordID uuid.UUID) (*patient.MedicalRecord, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.ResolveRecord(recordID)
}
