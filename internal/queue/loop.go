package queue

import (
	"slices"

	"github.com/handiism/gorlock/internal/model"
)

// message is one ordered update applied by the manager goroutine.
// reply is nil for background results.
type message struct {
	apply func() error
	reply chan error
}

func (m *Manager) loop() {
	defer close(m.done)

	for {
		select {
		case msg := <-m.msgs:
			var err error
			if msg.reply != nil && m.closing {
				err = ErrClosed
			} else {
				err = msg.apply()
			}
			m.publish()
			if msg.reply != nil {
				msg.reply <- err
			}
		case <-m.quit:
			return
		}
	}
}

// call runs fn on the manager goroutine and waits for it to be applied.
func (m *Manager) call(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case m.msgs <- message{apply: fn, reply: reply}:
	case <-m.done:
		return ErrClosed
	}

	select {
	case err := <-reply:
		return err
	case <-m.done:
		return ErrClosed
	}
}

// post queues fn for the manager goroutine without waiting.
// It reports false once the manager has stopped.
func (m *Manager) post(fn func()) bool {
	msg := message{apply: func() error {
		fn()
		return nil
	}}
	select {
	case m.msgs <- msg:
		return true
	case <-m.done:
		return false
	}
}

// publish stores a deep copy of the current state as the new snapshot.
func (m *Manager) publish() {
	m.version++

	s := &Snapshot{
		Jobs:      make([]model.Job, len(m.jobs)),
		Previews:  make([]model.PlaylistPreview, len(m.previews)),
		Resolving: slices.Clone(m.resolving),
		Notices:   slices.Clone(m.notices),
		AudioOnly: m.audioOnly,
		Version:   m.version,
	}
	for i, j := range m.jobs {
		s.Jobs[i] = j.Clone()
	}
	for i, p := range m.previews {
		s.Previews[i] = p.Clone()
	}
	if m.active != nil && !m.active.deleted {
		s.ActiveID = m.active.jobID
	}

	m.snap.Store(s)
}
