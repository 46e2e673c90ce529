package pico

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TService is a basic component for testing.
type TService struct {
	ID    string
	Value int
}

// TDependency is a basic dependency for testing.
type TDependency struct {
	Name string
}

// TServiceWithDeps demonstrates constructor injection.
type TServiceWithDeps struct {
	Svc *TService
	Dep *TDependency
}

// TInterface is a basic interface for testing.
type TInterface interface {
	GetID() string
}

func (s *TService) GetID() string { return s.ID }

// TOther also implements TInterface.
type TOther struct{}

func (o *TOther) GetID() string { return "other" }

var instanceCounter atomic.Int64

func NewTService() *TService {
	return &TService{ID: "test", Value: 42}
}

func NewTServiceWithID(id string) func() *TService {
	return func() *TService {
		return &TService{ID: id, Value: 42}
	}
}

func NewTDependency() *TDependency {
	return &TDependency{Name: "dep"}
}

func NewTServiceWithDeps(svc *TService, dep *TDependency) *TServiceWithDeps {
	return &TServiceWithDeps{Svc: svc, Dep: dep}
}

func NewTCounted() *TService {
	return &TService{ID: "counted", Value: int(instanceCounter.Add(1))}
}

func NewTOther() *TOther {
	return &TOther{}
}

func NewTServiceError() (*TService, error) {
	return nil, errors.New("constructor error")
}

// ============================================================================
// Multiple Constructor Test Types
// ============================================================================

type One struct{}
type Two struct{}
type Three struct{}

type Multi struct {
	message string
}

func newMultiOneTwoThree(*One, *Two, *Three) *Multi { return &Multi{"one two three"} }
func newMultiOneTwo(*One, *Two) *Multi              { return &Multi{"one two"} }
func newMultiTwoOne(*Two, *One) *Multi              { return &Multi{"two one"} }
func newMultiTwoThree(*Two, *Three) *Multi          { return &Multi{"two three"} }
func newMultiThreeOne(*Three, *One) *Multi          { return &Multi{"three one"} }

func multiImplementation() *Implementation {
	return Implement(newMultiOneTwoThree, newMultiOneTwo, newMultiTwoOne, newMultiTwoThree, newMultiThreeOne)
}

// ============================================================================
// Cyclic Dependency Test Types
// ============================================================================

type cycB struct{}
type cycD struct{ e *cycE }
type cycE struct{ d *cycD }

func newCycB() *cycB                 { return &cycB{} }
func newCycD(e *cycE, _ *cycB) *cycD { return &cycD{e: e} }
func newCycE(d *cycD) *cycE          { return &cycE{d: d} }

// ============================================================================
// Lifecycle Test Types
// ============================================================================

// recorder collects lifecycle events in call order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// lifecycleComponent records its lifecycle calls.
type lifecycleComponent struct {
	name string
	rec  *recorder
	err  error
}

func (l *lifecycleComponent) Start() error {
	l.rec.add(l.name + ".start")
	return l.err
}

func (l *lifecycleComponent) Stop() error {
	l.rec.add(l.name + ".stop")
	return l.err
}

func (l *lifecycleComponent) Dispose() error {
	l.rec.add(l.name + ".dispose")
	return l.err
}

type lcOne struct{ *lifecycleComponent }
type lcTwo struct {
	*lifecycleComponent
	one *lcOne
}
type lcThree struct {
	*lifecycleComponent
	two *lcTwo
}
type lcFour struct {
	*lifecycleComponent
	three *lcThree
}

func newLcOne(r *recorder) *lcOne {
	return &lcOne{&lifecycleComponent{name: "One", rec: r}}
}

func newLcTwo(r *recorder, one *lcOne) *lcTwo {
	return &lcTwo{&lifecycleComponent{name: "Two", rec: r}, one}
}

func newLcThree(r *recorder, two *lcTwo) *lcThree {
	return &lcThree{&lifecycleComponent{name: "Three", rec: r}, two}
}

func newLcFour(r *recorder, three *lcThree) *lcFour {
	return &lcFour{&lifecycleComponent{name: "Four", rec: r}, three}
}

// ============================================================================
// Collection Test Types
// ============================================================================

type Fish interface {
	Swim() string
}

type Cod struct{ name string }

func (c *Cod) Swim() string { return "cod " + c.name }

type Shark struct{}

func (s *Shark) Swim() string { return "shark" }

func NewCod() *Cod     { return &Cod{} }
func NewShark() *Shark { return &Shark{} }

type Bowl struct {
	cods   []*Cod
	fishes []Fish
}

func NewBowl(cods []*Cod, fishes []Fish) *Bowl {
	return &Bowl{cods: cods, fishes: fishes}
}

type MapBowl struct {
	cods   map[string]*Cod
	fishes map[string]Fish
}

func NewMapBowl(cods map[string]*Cod, fishes map[string]Fish) *MapBowl {
	return &MapBowl{cods: cods, fishes: fishes}
}

// School is a Fish made of other fish.
type School struct {
	members []Fish
}

func (s *School) Swim() string { return "school" }

func NewSchool(members []Fish) *School {
	return &School{members: members}
}

// ============================================================================
// Helpers
// ============================================================================

// registered returns a checker for Register* results.
//
//	ok := registered(t)
//	ok(c.RegisterImplementation(NewTService))
func registered(t *testing.T) func(ComponentAdapter, error) ComponentAdapter {
	return func(adapter ComponentAdapter, err error) ComponentAdapter {
		t.Helper()
		require.NoError(t, err)
		return adapter
	}
}
