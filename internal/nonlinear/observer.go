package nonlinear

// Observer receives lifecycle notifications. Calls are made synchronously
// from Execute, in order.
type Observer interface {
	OnStepConverged(step *LoadStep)
	OnStepAborted(step *LoadStep)
	OnAnalysisComplete(res *Result)
	OnAnalysisAborted(res *Result)
}

// Metric accumulates a scalar over the converged steps of a run.
type Metric interface {
	Name() string
	Observe(step *LoadStep)
	Value() float64
	Reset()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	StepConverged    func(*LoadStep)
	StepAborted      func(*LoadStep)
	AnalysisComplete func(*Result)
	AnalysisAborted  func(*Result)
}

func (o ObserverFuncs) OnStepConverged(s *LoadStep) {
	if o.StepConverged != nil {
		o.StepConverged(s)
	}
}

func (o ObserverFuncs) OnStepAborted(s *LoadStep) {
	if o.StepAborted != nil {
		o.StepAborted(s)
	}
}

func (o ObserverFuncs) OnAnalysisComplete(r *Result) {
	if o.AnalysisComplete != nil {
		o.AnalysisComplete(r)
	}
}

func (o ObserverFuncs) OnAnalysisAborted(r *Result) {
	if o.AnalysisAborted != nil {
		o.AnalysisAborted(r)
	}
}

type EventKind int

const (
	EventStepConverged EventKind = iota
	EventStepAborted
	EventAnalysisComplete
	EventAnalysisAborted
)

func (k EventKind) String() string {
	switch k {
	case EventStepConverged:
		return "step-converged"
	case EventStepAborted:
		return "step-aborted"
	case EventAnalysisComplete:
		return "analysis-complete"
	case EventAnalysisAborted:
		return "analysis-aborted"
	}
	return "unknown"
}

// Event is a value snapshot of a notification, safe to hand to another
// goroutine.
type Event struct {
	Kind         EventKind
	Step         int
	Iterations   int
	LoadFactor   float64
	Displacement float64
	Message      string
}

// EventSink is an Observer that publishes Events on a channel. Sends block
// when the buffer is full, so the consumer paces the analysis. The analysis
// never closes the channel; call Close after Execute returns.
type EventSink struct {
	ch chan Event
}

func NewEventSink(buffer int) *EventSink {
	return &EventSink{ch: make(chan Event, buffer)}
}

func (e *EventSink) Events() <-chan Event { return e.ch }
func (e *EventSink) Close()               { close(e.ch) }

func (e *EventSink) OnStepConverged(s *LoadStep) {
	ev := Event{Kind: EventStepConverged, Step: s.Number, Iterations: s.history.Len(), LoadFactor: s.LoadFactor}
	if s.Monitored != nil {
		ev.Displacement = s.Monitored.Displacement
	}
	e.ch <- ev
}

func (e *EventSink) OnStepAborted(s *LoadStep) {
	e.ch <- Event{Kind: EventStepAborted, Step: s.Number, Iterations: s.history.Len(), LoadFactor: s.LoadFactor, Message: s.StopMessage}
}

func (e *EventSink) OnAnalysisComplete(r *Result) {
	e.ch <- resultEvent(EventAnalysisComplete, r)
}

func (e *EventSink) OnAnalysisAborted(r *Result) {
	e.ch <- resultEvent(EventAnalysisAborted, r)
}

func resultEvent(kind EventKind, r *Result) Event {
	ev := Event{Kind: kind, Step: len(r.Steps), Iterations: r.TotalIterations, LoadFactor: r.LoadFactor, Message: r.StopMessage}
	if n := len(r.Curve); n > 0 {
		ev.Displacement = r.Curve[n-1].Displacement
	}
	return ev
}
