package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"healthscreen/internal/capture"
	"healthscreen/internal/patient"
)

// storedFile is an uploaded attachment kept in session memory.
type storedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Session is the state store for one running session: the chat log, the
// capture flags, the patient profile, the active view and the capability
// grants. All mutation goes through the session's lock, one writer per
// session. Containers are replaced on append rather than mutated in place, so
// a snapshot taken under the lock stays stable afterwards.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu          sync.Mutex
	state       State
	profile     *patient.Profile
	view        ViewSelection
	location    *capture.Position
	locationOK  bool
	buffer      capture.ChunkBuffer
	attachments map[uuid.UUID]storedFile
}

// Snapshot is a stable, read-only copy of the session state.
type Snapshot struct {
	ID        uuid.UUID       `json:"id"`
	State     State           `json:"state"`
	View      ViewSelection   `json:"view"`
	Profile   patient.Profile `json:"profile"`
	CreatedAt time.Time       `json:"created_at"`
}

func newSession(profile *patient.Profile) *Session {
	return &Session{
		ID:          uuid.New(),
		CreatedAt:   time.Now(),
		profile:     profile,
		view:        ViewSelection{View: ViewChat},
		attachments: make(map[uuid.UUID]storedFile),
	}
}

// Snapshot copies the current state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		State:     s.state,
		View:      s.view,
		Profile:   *s.profile,
		CreatedAt: s.CreatedAt,
	}
}

// AppendMessage appends a new message to the chat log and returns it.
func (s *Session) AppendMessage(text string, isUser bool, image string, file *FileAttachment) Message {
	msg := Message{
		ID:        uuid.New(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: time.Now(),
		Image:     image,
		File:      file,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]Message, len(s.state.Messages), len(s.state.Messages)+1)
	copy(messages, s.state.Messages)
	s.state.Messages = append(messages, msg)
	return msg
}

// Messages returns the current chat log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Messages
}

func (s *Session) SetRecording(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Recording = v
}

func (s *Session) SetProcessing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Processing = v
}

func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Recording
}

func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Processing
}

// AppendRecord appends a medical record to the profile's history.
func (s *Session) AppendRecord(record patient.MedicalRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]patient.MedicalRecord, len(s.profile.MedicalHistory), len(s.profile.MedicalHistory)+1)
	copy(history, s.profile.MedicalHistory)
	s.profile.MedicalHistory = append(history, record)
}

// ResolveRecord marks one history record as resolved, the single permitted
// record mutation. The lookup and the container swap happen under the same
// lock acquisition so a concurrent append is never lost.
func (s *Session) ResolveRecord(id uuid.UUID) (*patient.MedicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, record, err := patient.Resolve(s.profile.MedicalHistory, id)
	if err != nil {
		return nil, err
	}
	s.profile.MedicalHistory = history
	return record, nil
}

// History returns the current medical history.
func (s *Session) History() []patient.MedicalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.MedicalHistory
}

// Profile returns a copy of the patient profile.
func (s *Session) Profile() patient.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.profile
}

// SelectView activates exactly the requested view.
func (s *Session) SelectView(sel ViewSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = sel
}

func (s *Session) ActiveView() ViewSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// GrantLocation records a successful geolocation grant.
func (s *Session) GrantLocation(pos *capture.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locationOK = true
	s.location = pos
}

func (s *Session) LocationGranted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locationOK
}

// PushChunk buffers one capture chunk while a recording is active.
func (s *Session) PushChunk(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Recording {
		return ErrNotRecording
	}
	s.buffer.Push(chunk)
	return nil
}

// BeginRecording flips the recording flag on. Checking and setting share one
// lock acquisition, so of two concurrent starts exactly one wins.
func (s *Session) BeginRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Recording {
		return ErrAlreadyRecording
	}
	s.state.Recording = true
	return nil
}

// FinishRecording atomically ends the recording, raises the processing flag
// and hands back the concatenated capture payload.
func (s *Session) FinishRecording() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Recording {
		return nil, ErrNotRecording
	}
	s.state.Recording = false
	s.state.Processing = true
	return s.buffer.Drain(), nil
}

// StoreFile keeps an uploaded attachment in session memory and returns its id.
func (s *Session) StoreFile(name, contentType string, data []byte) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments[id] = storedFile{Name: name, ContentType: contentType, Data: data}
	return id
}

// File returns a stored attachment.
func (s *Session) File(id uuid.UUID) (name, contentType string, data []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.attachments[id]
	if !ok {
		return "", "", nil, ErrFileNotFound
	}
	return f.Name, f.ContentType, f.Data, nil
}
