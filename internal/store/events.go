package store

// Event names a change observers may want to react to.
type Event string

// EventDataUpdated is emitted after a bulk mutation (sync download, import)
// has been committed. Observers should reload any derived view.
const EventDataUpdated Event = "scraps_data_updated"

// Subscribe registers fn for every emitted event and returns a function that
// removes it. fn runs synchronously on the emitting goroutine, after the
// store lock has been released.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) emit(e Event) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
