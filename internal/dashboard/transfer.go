package dashboard

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/gpudash/internal/errors"
)

// DefaultDownloadName is used when the remote path has no usable last segment.
const DefaultDownloadName = "download"

// ErrBusy is returned (and announced) when a transfer starts while one of
// the same direction is still running.
var ErrBusy = errors.New(errors.ErrTransfer, "A transfer is already running", "Wait for it to finish")

// Direction selects the upload or download session.
type Direction int

const (
	Upload Direction = iota
	Download
)

func (d Direction) String() string {
	if d == Download {
		return "download"
	}
	return "upload"
}

// TransferPhase is the lifecycle of a transfer session.
type TransferPhase int

const (
	TransferIdle TransferPhase = iota
	TransferActive
	TransferDone
	TransferFailed
)

func (p TransferPhase) String() string {
	switch p {
	case TransferActive:
		return "active"
	case TransferDone:
		return "done"
	case TransferFailed:
		return "failed"
	default:
		return "idle"
	}
}

// TransferSession is one upload or download. Host is captured when the
// transfer starts and does not follow later selection changes.
type TransferSession struct {
	ID        string
	Direction Direction
	Host      string
	Remote    string
	Local     string

	Phase       TransferPhase
	Transferred int64
	Total       int64 // -1 when unknown
	StartedAt   time.Time
	FinishedAt  time.Time
	Throughput  float64 // bytes/s, cumulative average since start
	Err         string
}

// Busy reports whether the session is running.
func (s TransferSession) Busy() bool {
	return s.Phase == TransferActive
}

// Percent returns progress in 0-100 and whether the total is known.
func (s TransferSession) Percent() (float64, bool) {
	if s.Total <= 0 {
		if s.Phase == TransferDone {
			return 100, true
		}
		return 0, false
	}
	pct := float64(s.Transferred) / float64(s.Total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// UploadInput is what the operator supplies to start an upload.
type UploadInput struct {
	Host       string
	LocalPath  string
	RemotePath string
}

// DownloadInput is what the operator supplies to start a download.
// LocalName may be empty; it is derived from RemotePath.
type DownloadInput struct {
	Host       string
	RemotePath string
	LocalName  string
	Dir        string
}

// TransferEngine holds the upload and download sessions. The two are
// independent; each allows one running transfer at a time. Like Scheduler,
// it is driven from a single goroutine.
type TransferEngine struct {
	observers

	clock    Clock
	stat     func(string) (os.FileInfo, error)
	sessions [2]TransferSession
}

// NewTransferEngine returns an engine with both sessions idle.
func NewTransferEngine(clock Clock) *TransferEngine {
	if clock == nil {
		clock = RealClock()
	}
	e := &TransferEngine{clock: clock, stat: os.Stat}
	e.sessions[Upload] = idleSession(Upload)
	e.sessions[Download] = idleSession(Download)
	return e
}

func idleSession(dir Direction) TransferSession {
	return TransferSession{Direction: dir, Total: -1}
}

// Session returns a snapshot of one direction's session.
func (e *TransferEngine) Session(dir Direction) TransferSession {
	return e.sessions[dir]
}

// StartUpload validates in and opens a new upload session.
func (e *TransferEngine) StartUpload(in UploadInput) (TransferSession, error) {
	if e.sessions[Upload].Busy() {
		e.notify(NoticeWarn, errors.Message(ErrBusy))
		return e.sessions[Upload], ErrBusy
	}

	var size int64 = -1
	err := validateCommon(in.Host, in.RemotePath)
	if err == nil {
		if strings.TrimSpace(in.LocalPath) == "" {
			err = errors.Validation("Choose a local file to upload")
		} else if info, statErr := e.stat(in.LocalPath); statErr != nil {
			err = errors.Validation("Cannot read " + in.LocalPath)
		} else if info.IsDir() {
			err = errors.Validation(in.LocalPath + " is a directory; choose a file")
		} else {
			size = info.Size()
		}
	}
	if err != nil {
		e.notify(NoticeWarn, errors.Message(err))
		return e.sessions[Upload], err
	}

	return e.start(TransferSession{
		Direction: Upload,
		Host:      in.Host,
		Remote:    strings.TrimSpace(in.RemotePath),
		Local:     in.LocalPath,
		Total:     size,
	}), nil
}

// StartDownload validates in and opens a new download session. The local
// file name is derived from the remote path when none is given.
func (e *TransferEngine) StartDownload(in DownloadInput) (TransferSession, error) {
	if e.sessions[Download].Busy() {
		e.notify(NoticeWarn, errors.Message(ErrBusy))
		return e.sessions[Download], ErrBusy
	}

	if err := validateCommon(in.Host, in.RemotePath); err != nil {
		e.notify(NoticeWarn, errors.Message(err))
		return e.sessions[Download], err
	}

	name := DeriveLocalName(in.RemotePath, in.LocalName)
	if name != filepath.Base(name) || name == "." || name == ".." {
		err := errors.Validation(fmt.Sprintf("Local name %q must be a plain file name", name))
		e.notify(NoticeWarn, errors.Message(err))
		return e.sessions[Download], err
	}

	dir := in.Dir
	if dir == "" {
		dir = "."
	}
	return e.start(TransferSession{
		Direction: Download,
		Host:      in.Host,
		Remote:    strings.TrimSpace(in.RemotePath),
		Local:     filepath.Join(dir, name),
		Total:     -1,
	}), nil
}

func validateCommon(host, remote string) error {
	if host == "" {
		return errors.Validation("Select a host first")
	}
	if strings.TrimSpace(remote) == "" {
		return errors.Validation("Remote path is required")
	}
	return nil
}

func (e *TransferEngine) start(s TransferSession) TransferSession {
	s.ID = uuid.NewString()
	s.Phase = TransferActive
	s.StartedAt = e.clock.Now()
	e.sessions[s.Direction] = s
	e.emit(Event{Kind: EventTransferChanged, Direction: s.Direction})
	return s
}

// Progress records cumulative bytes for session id. total < 0 leaves the
// known total alone. Updates for any other session are ignored.
func (e *TransferEngine) Progress(dir Direction, id string, transferred, total int64) bool {
	s := &e.sessions[dir]
	if s.ID != id || !s.Busy() {
		return false
	}

	s.Transferred = transferred
	if total >= 0 {
		s.Total = total
	}
	if elapsed := e.clock.Now().Sub(s.StartedAt); elapsed > 0 {
		s.Throughput = float64(transferred) / elapsed.Seconds()
	}
	e.emit(Event{Kind: EventTransferChanged, Direction: dir})
	return true
}

// Complete finishes session id and pins the bar at 100%.
func (e *TransferEngine) Complete(dir Direction, id string) bool {
	s := &e.sessions[dir]
	if s.ID != id || !s.Busy() {
		return false
	}

	if s.Total < 0 {
		s.Total = s.Transferred
	} else {
		s.Transferred = s.Total
	}
	s.Phase = TransferDone
	s.FinishedAt = e.clock.Now()
	if elapsed := s.FinishedAt.Sub(s.StartedAt); elapsed > 0 {
		s.Throughput = float64(s.Transferred) / elapsed.Seconds()
	}

	e.emit(Event{Kind: EventTransferChanged, Direction: dir})
	if dir == Upload {
		e.notify(NoticeSuccess, fmt.Sprintf("Uploaded to %s:%s", s.Host, s.Remote))
	} else {
		e.notify(NoticeSuccess, "Saved "+s.Local)
	}
	return true
}

// Fail ends session id with msg. The bar stays where it was.
func (e *TransferEngine) Fail(dir Direction, id, msg string) bool {
	s := &e.sessions[dir]
	if s.ID != id || !s.Busy() {
		return false
	}

	if msg == "" {
		msg = "Transfer failed"
	}
	s.Phase = TransferFailed
	s.Err = msg
	s.FinishedAt = e.clock.Now()

	e.emit(Event{Kind: EventTransferChanged, Direction: dir})
	e.notify(NoticeError, msg)
	return true
}

// Reset re-arms a finished session to idle. It does nothing while the
// session is running.
func (e *TransferEngine) Reset(dir Direction) {
	if e.sessions[dir].Busy() {
		return
	}
	e.sessions[dir] = idleSession(dir)
	e.emit(Event{Kind: EventTransferChanged, Direction: dir})
}

// DeriveLocalName picks the file name for a download: the trimmed local
// name if given, else the last segment of the remote path, else
// DefaultDownloadName.
func DeriveLocalName(remote, local string) string {
	if name := strings.TrimSpace(local); name != "" {
		return name
	}
	remote = strings.TrimSpace(remote)
	if remote == "" || strings.HasSuffix(remote, "/") {
		return DefaultDownloadName
	}
	base := path.Base(remote)
	if base == "." || base == "/" || base == "~" {
		return DefaultDownloadName
	}
	return base
}
