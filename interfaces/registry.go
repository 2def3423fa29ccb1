// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import (
	"sort"

	"github.com/helics/core/fedid"
	"github.com/helics/core/herrors"
)

// Registry owns the four interface tables of a federate plus
// translators (spec.md §4.2). Registration is only valid before the
// federate leaves CREATED; FinishRegistration locks the tables.
type Registry struct {
	publications map[string]*Publication
	inputs       map[string]*Input
	endpoints    map[string]*Endpoint
	filters      map[string]*Filter
	translators  map[string]*Translator

	pubByHandle map[fedid.InterfaceHandle]*Publication
	inByHandle  map[fedid.InterfaceHandle]*Input
	epByHandle  map[fedid.InterfaceHandle]*Endpoint

	nextHandle fedid.InterfaceHandle

	registrationClosed bool
	changeDetectionDefault bool

	Diagnostics *Diagnostics
}

// NewRegistry builds an empty registry. diagLogDepth sizes the
// connectivity-issue ring buffer (0 selects a reasonable default).
func NewRegistry(diagLogDepth int) *Registry {
	if diagLogDepth <= 0 {
		diagLogDepth = 64
	}
	return &Registry{
		publications: make(map[string]*Publication),
		inputs:       make(map[string]*Input),
		endpoints:    make(map[string]*Endpoint),
		filters:      make(map[string]*Filter),
		translators:  make(map[string]*Translator),
		pubByHandle:  make(map[fedid.InterfaceHandle]*Publication),
		inByHandle:   make(map[fedid.InterfaceHandle]*Input),
		epByHandle:   make(map[fedid.InterfaceHandle]*Endpoint),
		Diagnostics:  NewDiagnostics(diagLogDepth),
	}
}

// SetChangeDetectionDefault propagates HANDLE_ONLY_UPDATE_ON_CHANGE to
// every Input created from this point on (spec.md §4.2: "change
// detection flag propagates from the registry to each input created
// thereafter").
func (r *Registry) SetChangeDetectionDefault(on bool) {
	r.changeDetectionDefault = on
}

func (r *Registry) allocHandle() fedid.InterfaceHandle {
	h := r.nextHandle
	r.nextHandle++
	return h
}

func (r *Registry) guardRegistration() error {
	if r.registrationClosed {
		return herrors.InvalidFunctionCall("interface registration only allowed in CREATED state")
	}
	return nil
}

// FinishRegistration closes the tables to further register* calls,
// invoked when the owning federate leaves CREATED.
func (r *Registry) FinishRegistration() {
	r.registrationClosed = true
}

// RegisterPublication adds a new publication; duplicate key is an error.
func (r *Registry) RegisterPublication(key, typ, units string) (fedid.InterfaceHandle, error) {
	if err := r.guardRegistration(); err != nil {
		return fedid.InvalidInterfaceHandle, err
	}
	if _, exists := r.publications[key]; exists {
		return fedid.InvalidInterfaceHandle, herrors.RegistrationFailure("duplicate publication key %q", key)
	}
	h := r.allocHandle()
	p := NewPublication(h, key, typ, units)
	r.publications[key] = p
	r.pubByHandle[h] = p
	return h, nil
}

// RegisterInput adds a new input; duplicate key is an error.
func (r *Registry) RegisterInput(key, typ, units string) (fedid.InterfaceHandle, error) {
	if err := r.guardRegistration(); err != nil {
		return fedid.InvalidInterfaceHandle, err
	}
	if _, exists := r.inputs[key]; exists {
		return fedid.InvalidInterfaceHandle, herrors.RegistrationFailure("duplicate input key %q", key)
	}
	h := r.allocHandle()
	in := NewInput(h, key, typ, units)
	in.onlyUpdateOnChange = r.changeDetectionDefault
	r.inputs[key] = in
	r.inByHandle[h] = in
	return h, nil
}

// RegisterEndpoint adds a new endpoint; duplicate key is an error.
func (r *Registry) RegisterEndpoint(key, typ string) (fedid.InterfaceHandle, error) {
	if err := r.guardRegistration(); err != nil {
		return fedid.InvalidInterfaceHandle, err
	}
	if _, exists := r.endpoints[key]; exists {
		return fedid.InvalidInterfaceHandle, herrors.RegistrationFailure("duplicate endpoint key %q", key)
	}
	h := r.allocHandle()
	e := NewEndpoint(h, key, typ)
	r.endpoints[key] = e
	r.epByHandle[h] = e
	return h, nil
}

// RegisterFilter adds a new filter; duplicate key is an error.
func (r *Registry) RegisterFilter(key string, side FilterSide, inType, outType string) (fedid.InterfaceHandle, error) {
	if err := r.guardRegistration(); err != nil {
		return fedid.InvalidInterfaceHandle, err
	}
	if _, exists := r.filters[key]; exists {
		return fedid.InvalidInterfaceHandle, herrors.RegistrationFailure("duplicate filter key %q", key)
	}
	h := r.allocHandle()
	r.filters[key] = NewFilter(h, key, side, inType, outType)
	return h, nil
}

// RegisterTranslator adds a new translator backed by its own
// publication/input/endpoint handles.
func (r *Registry) RegisterTranslator(key, typ string) (fedid.InterfaceHandle, error) {
	if err := r.guardRegistration(); err != nil {
		return fedid.InvalidInterfaceHandle, err
	}
	if _, exists := r.translators[key]; exists {
		return fedid.InvalidInterfaceHandle, herrors.RegistrationFailure("duplicate translator key %q", key)
	}
	h := r.allocHandle()
	tr := NewTranslator(h, key, r.allocHandle(), r.allocHandle(), r.allocHandle(), typ)
	r.translators[key] = tr
	r.pubByHandle[tr.Pub.Handle] = tr.Pub
	r.inByHandle[tr.In.Handle] = tr.In
	r.epByHandle[tr.Ep.Handle] = tr.Ep
	return h, nil
}

func (r *Registry) Publication(h fedid.InterfaceHandle) (*Publication, bool) {
	p, ok := r.pubByHandle[h]
	return p, ok
}

func (r *Registry) Input(h fedid.InterfaceHandle) (*Input, bool) {
	in, ok := r.inByHandle[h]
	return in, ok
}

func (r *Registry) Endpoint(h fedid.InterfaceHandle) (*Endpoint, bool) {
	e, ok := r.epByHandle[h]
	return e, ok
}

// InputHandles returns every registered input's handle in allocation
// order, for callers (FederateState's event-vector computation) that
// must walk the whole table once per grant.
func (r *Registry) InputHandles() []fedid.InterfaceHandle {
	out := make([]fedid.InterfaceHandle, 0, len(r.inByHandle))
	for h := range r.inByHandle {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns the registered keys of every interface of the given
// kind, sorted for deterministic query responses (CoordinatorCore's
// "publications"/"inputs"/"endpoints" query keys).
func (r *Registry) Names(kind Kind) []string {
	var out []string
	switch kind {
	case KindPublication:
		out = make([]string, 0, len(r.publications))
		for name := range r.publications {
			out = append(out, name)
		}
	case KindInput:
		out = make([]string, 0, len(r.inputs))
		for name := range r.inputs {
			out = append(out, name)
		}
	case KindEndpoint:
		out = make([]string, 0, len(r.endpoints))
		for name := range r.endpoints {
			out = append(out, name)
		}
	case KindFilter:
		out = make([]string, 0, len(r.filters))
		for name := range r.filters {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// SetInputDelta sets an input's change-detection tolerance δ
// directly; unlike the other input options this is a float, so it
// bypasses SetProperty's int-only value slot.
func (r *Registry) SetInputDelta(h fedid.InterfaceHandle, delta float64) error {
	in, ok := r.inByHandle[h]
	if !ok {
		return herrors.InvalidParameter("no input with handle %s", h)
	}
	in.delta = delta
	return nil
}

func (r *Registry) Filter(key string) (*Filter, bool) {
	f, ok := r.filters[key]
	return f, ok
}

// FiltersFor returns the filters of the given side whose target set
// names the local endpoint handle, in deterministic key order — the
// path a message walks as it crosses an endpoint boundary (spec.md
// §3's Filter entity: "sits on an endpoint's source or destination
// path"). Matching is on the target's InterfaceHandle only, not its
// GlobalFederateId: filters live in the same registry as the endpoint
// they gate, and that endpoint's owning federate only learns its real
// GlobalFederateId from its hub at registration time, never through
// its own registry — so the federate component of a stored target is
// not a reliable local comparison key.
func (r *Registry) FiltersFor(target fedid.InterfaceHandle, side FilterSide) []*Filter {
	keys := make([]string, 0, len(r.filters))
	for k := range r.filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []*Filter
	for _, k := range keys {
		f := r.filters[k]
		if f.Side != side {
			continue
		}
		for _, t := range f.targets {
			if t.Interface == target {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func (r *Registry) Translator(key string) (*Translator, bool) {
	tr, ok := r.translators[key]
	return tr, ok
}

// SetProperty applies an Option to the handle's owning interface.
// Options that don't apply to the given kind are rejected, and so is
// INPUT_PRIORITY_LOCATION, whose value is a handle rather than an int:
// Input.SetPriority sets that one.
func (r *Registry) SetProperty(kind Kind, h fedid.InterfaceHandle, opt Option, value int, flag bool) error {
	switch kind {
	case KindPublication:
		p, ok := r.pubByHandle[h]
		if !ok {
			return herrors.InvalidParameter("no publication with handle %s", h)
		}
		return applyPublicationOption(p, opt, value, flag)
	case KindInput:
		in, ok := r.inByHandle[h]
		if !ok {
			return herrors.InvalidParameter("no input with handle %s", h)
		}
		return applyInputOption(in, opt, value, flag)
	case KindEndpoint:
		e, ok := r.epByHandle[h]
		if !ok {
			return herrors.InvalidParameter("no endpoint with handle %s", h)
		}
		return applyEndpointOption(e, opt, value, flag)
	}
	return herrors.InvalidParameter("properties not supported for kind %s", kind)
}

func applyPublicationOption(p *Publication, opt Option, value int, flag bool) error {
	switch opt {
	case ConnectionRequired:
		p.connectionRequired = flag
	case ConnectionOptional:
		p.connectionRequired = !flag
	case SingleConnectionOnly:
		p.singleConnection = flag
	case MultipleConnectionsAllowed:
		p.singleConnection = !flag
	case Connections:
		p.connectionCount = value
	case HandleOnlyTransmitOnChange:
		p.onlyTransmitOnChange = flag
	case BufferData:
		p.bufferData = flag
	default:
		return herrors.InvalidParameter("option %s does not apply to a publication", opt)
	}
	return nil
}

func applyInputOption(in *Input, opt Option, value int, flag bool) error {
	switch opt {
	case ConnectionRequired:
		in.connectionRequired = flag
	case ConnectionOptional:
		in.connectionRequired = !flag
	case IgnoreInterrupts:
		// accepted and ignored: no Input field records it.
	case HandleOnlyUpdateOnChange:
		in.onlyUpdateOnChange = flag
	case StrictTypeChecking:
		in.strictTypeMatch = flag
	case IgnoreUnitMismatch:
		in.ignoreUnitMismatch = flag
	case ClearPriorityList:
		in.ClearPriority()
	case TimeRestricted:
		in.minTimeGap = fedid.Time(value) / 1000.0
	default:
		return herrors.InvalidParameter("option %s does not apply to an input", opt)
	}
	return nil
}

func applyEndpointOption(e *Endpoint, opt Option, value int, flag bool) error {
	switch opt {
	case ConnectionRequired:
		e.required = flag
	case ConnectionOptional:
		e.required = !flag
	case SingleConnectionOnly:
		e.singleConnection = flag
	case MultipleConnectionsAllowed:
		e.singleConnection = !flag
	case SendOnly:
		e.sendOnly = flag
	case ReceiveOnly:
		e.receiveOnly = flag
	default:
		return herrors.InvalidParameter("option %s does not apply to an endpoint", opt)
	}
	return nil
}

// AddSource matches a publication onto an input (spec.md §4.2).
func (r *Registry) AddSource(inHandle fedid.InterfaceHandle, source fedid.GlobalHandle, name, typ, units string) error {
	in, ok := r.inByHandle[inHandle]
	if !ok {
		return herrors.InvalidParameter("no input with handle %s", inHandle)
	}
	return in.AddSource(source, name, typ, units)
}

// AddDestination matches a subscriber onto a publication.
func (r *Registry) AddDestination(pubHandle fedid.InterfaceHandle, dest fedid.GlobalHandle) error {
	p, ok := r.pubByHandle[pubHandle]
	if !ok {
		return herrors.InvalidParameter("no publication with handle %s", pubHandle)
	}
	p.AddSubscriber(dest)
	return nil
}

// CheckInterfacesForIssues validates every registered interface,
// recording and returning whatever issues it finds (spec.md §4.2).
func (r *Registry) CheckInterfacesForIssues() []Issue {
	var issues []Issue
	for _, p := range r.publications {
		if p.connectionRequired && len(p.subscribers) == 0 {
			issues = append(issues, Issue{Code: IssueRequiredConnectionMissing, Message: "publication " + p.Key + " has no subscribers"})
		}
		if p.connectionCount > 0 && len(p.subscribers) < p.connectionCount {
			issues = append(issues, Issue{Code: IssueConnectionCountNotMet, Message: "publication " + p.Key + " below required connection count"})
		}
	}
	for _, in := range r.inputs {
		if in.connectionRequired && len(in.sources) == 0 {
			issues = append(issues, Issue{Code: IssueRequiredConnectionMissing, Message: "input " + in.Key + " has no matched sources"})
		}
		for _, s := range in.sources {
			if in.strictTypeMatch && !compatible(in.Type, s.typ, true) {
				issues = append(issues, Issue{Code: IssueTypeMismatch, Message: "input " + in.Key + " source " + s.name + " type mismatch"})
			}
			if !in.ignoreUnitMismatch && !unitsCompatible(in.Units, s.units) {
				issues = append(issues, Issue{Code: IssueUnitMismatch, Message: "input " + in.Key + " source " + s.name + " unit mismatch"})
			}
		}
	}
	for _, e := range r.endpoints {
		if e.required && len(e.targets) == 0 {
			issues = append(issues, Issue{Code: IssueRequiredConnectionMissing, Message: "endpoint " + e.Key + " has no targets"})
		}
	}
	r.Diagnostics.RecordAll(issues)
	return issues
}
