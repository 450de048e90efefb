package ilpvar

// Origin is the diagnostic label attached to every emitted constraint (§3
// "Origin"): which script and which initial top-level call produced it.
// BatchID distinguishes constraints emitted by independent evaluation runs
// of the same script set (§5 "independent batches... each with its own
// environment"); internal/eval stamps it from a freshly generated UUID per
// batch so two concurrent batches can never be confused with one another
// in a diagnostic trail.
type Origin struct {
	BatchID  string
	Module   string
	CallPath string // dot-joined chain of calls from the top-level trigger
}

// NewOrigin builds an Origin for a top-level call (CallPath is just the
// function name at this point; nested evaluation appends to it via
// Extend).
func NewOrigin(batchID, module, fn string) Origin {
	return Origin{BatchID: batchID, Module: module, CallPath: fn}
}

// Extend returns a copy of o with fn appended to the call path, used when
// evaluation descends into a nested call.
func (o Origin) Extend(fn string) Origin {
	o.CallPath = o.CallPath + "." + fn
	return o
}

func (o Origin) String() string {
	return o.Module + ":" + o.CallPath + " [" + o.BatchID + "]"
}
