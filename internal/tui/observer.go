package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/paging"
)

// subscription adapts the stream's state channel to Bubble Tea commands.
// It is shared by pointer so every copy of the Model detaches the same channel.
type subscription struct {
	mu   sync.Mutex
	ch   <-chan paging.StreamState
	stop func()
}

// attach subscribes to the projector's stream, replacing any earlier channel
func (s *subscription) attach(p *catalog.Projector) {
	s.detach()

	ch, stop := p.Stream().Subscribe()

	s.mu.Lock()
	s.ch, s.stop = ch, stop
	s.mu.Unlock()
}

// detach cancels the subscription. The stream keeps its pages.
func (s *subscription) detach() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// waitStream returns a command that delivers the next stream state
func (s *subscription) waitStream() tea.Cmd {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return StreamClosedMsg{}
		}
		return StreamUpdatedMsg{State: state}
	}
}
