package schedule

import (
	"sync"

	"solvit/models"
)

// ProviderFeed fans each written provider out to its subscribers. A slow
// subscriber only ever sees the latest state.
type ProviderFeed struct {
	mu   sync.Mutex
	subs map[string]map[chan *models.Provider]struct{}
}

func NewProviderFeed() *ProviderFeed {
	return &ProviderFeed{subs: map[string]map[chan *models.Provider]struct{}{}}
}

// Subscribe returns a channel of updates for providerID and a cancel function
// that closes it.
func (f *ProviderFeed) Subscribe(providerID string) (<-chan *models.Provider, func()) {
	ch := make(chan *models.Provider, 1)

	f.mu.Lock()
	if f.subs[providerID] == nil {
		f.subs[providerID] = map[chan *models.Provider]struct{}{}
	}
	f.subs[providerID][ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[providerID], ch)
			if len(f.subs[providerID]) == 0 {
				delete(f.subs, providerID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish never blocks. A pending update nobody has read yet is replaced.
func (f *ProviderFeed) Publish(p *models.Provider) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subs[p.ID] {
		select {
		case <-ch:
		default:
		}
		ch <- p
	}
}

func (f *ProviderFeed) subscribers(providerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[providerID])
}
