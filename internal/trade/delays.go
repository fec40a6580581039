package trade

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// DelayProfile is the set of waits the engine uses between steps.
type DelayProfile struct {
	Name           string
	AfterClick     time.Duration
	AfterType      time.Duration
	AfterSelect    time.Duration
	AfterSearch    time.Duration
	OptionTimeout  time.Duration
	ResultsTimeout time.Duration
	PollInterval   time.Duration
}

const DefaultProfile = "normal"

var profiles = map[string]DelayProfile{
	"fast": {
		Name:           "fast",
		AfterClick:     100 * time.Millisecond,
		AfterType:      150 * time.Millisecond,
		AfterSelect:    100 * time.Millisecond,
		AfterSearch:    300 * time.Millisecond,
		OptionTimeout:  1 * time.Second,
		ResultsTimeout: 3 * time.Second,
		PollInterval:   50 * time.Millisecond,
	},
	"normal": {
		Name:           "normal",
		AfterClick:     250 * time.Millisecond,
		AfterType:      400 * time.Millisecond,
		AfterSelect:    250 * time.Millisecond,
		AfterSearch:    750 * time.Millisecond,
		OptionTimeout:  2 * time.Second,
		ResultsTimeout: 6 * time.Second,
		PollInterval:   100 * time.Millisecond,
	},
	"slow": {
		Name:           "slow",
		AfterClick:     600 * time.Millisecond,
		AfterType:      900 * time.Millisecond,
		AfterSelect:    600 * time.Millisecond,
		AfterSearch:    1500 * time.Millisecond,
		OptionTimeout:  4 * time.Second,
		ResultsTimeout: 12 * time.Second,
		PollInterval:   200 * time.Millisecond,
	},
}

// Profile returns the named profile.
func Profile(name string) (DelayProfile, bool) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ProfileNames lists the known profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DelaySource is read by the engine before every wait.
type DelaySource interface {
	Delays() DelayProfile
}

// DelaySelector holds the active profile. Set takes effect on the next
// step of a running search.
type DelaySelector struct {
	current atomic.Pointer[DelayProfile]
}

func NewDelaySelector(p DelayProfile) *DelaySelector {
	s := &DelaySelector{}
	s.Set(p)
	return s
}

func (s *DelaySelector) Set(p DelayProfile) {
	s.current.Store(&p)
}

// SetByName switches to a named profile.
func (s *DelaySelector) SetByName(name string) error {
	p, ok := Profile(name)
	if !ok {
		return fmt.Errorf("unknown delay profile %q (known: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	s.Set(p)
	return nil
}

func (s *DelaySelector) Delays() DelayProfile {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return profiles[DefaultProfile]
}
