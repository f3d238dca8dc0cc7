// Package escape records escape facts about variables. The backend does
// not infer escapes itself; frontends and checkers mark what they prove
// and allocation decisions read the recorded facts back.
package escape

// Info represents the escape facts recorded for one variable.
type Info struct {
	Escapes       bool
	CapturedByRef bool
	AddressTaken  bool
}

// Heapbound reports whether any recorded fact forces heap allocation.
func (i Info) Heapbound() bool {
	return i.Escapes || i.CapturedByRef || i.AddressTaken
}

// Facts stores escape information keyed by context and variable name.
type Facts struct {
	info map[string]Info
}

// NewFacts returns an empty fact store.
func NewFacts() *Facts {
	return &Facts{info: make(map[string]Info, 32)}
}

func key(name, context string) string {
	return context + "_" + name
}

// Lookup returns the recorded facts for a variable. Unknown variables
// report no escapes.
func (f *Facts) Lookup(name, context string) Info {
	if f == nil {
		return Info{}
	}
	return f.info[key(name, context)]
}

// MarkEscaped records that the variable outlives its scope.
func (f *Facts) MarkEscaped(name, context string) {
	if f == nil {
		return
	}
	k := key(name, context)
	info := f.info[k]
	info.Escapes = true
	f.info[k] = info
}

// MarkCapturedByRef records that a closure captured the variable by
// reference.
func (f *Facts) MarkCapturedByRef(name, context string) {
	if f == nil {
		return
	}
	k := key(name, context)
	info := f.info[k]
	info.CapturedByRef = true
	f.info[k] = info
}

// MarkAddressTaken records that the variable's address was observed.
func (f *Facts) MarkAddressTaken(name, context string) {
	if f == nil {
		return
	}
	k := key(name, context)
	info := f.info[k]
	info.AddressTaken = true
	f.info[k] = info
}

// ShouldAllocateOnHeap reports whether any recorded fact forces the
// variable onto the heap.
func (f *Facts) ShouldAllocateOnHeap(name, context string) bool {
	return f.Lookup(name, context).Heapbound()
}

// Len returns the number of variables with recorded facts.
func (f *Facts) Len() int {
	if f == nil {
		return 0
	}
	return len(f.info)
}
