package reactive

// Observer is a presentation component kept in sync with a marker model,
// such as a timeline view or a segment list.
//
// After every committed mutation at least one of the methods is called
// within one coalescing window. Indices are sorted and unique, and refer to
// the model as it is at delivery time.
type Observer interface {
	OnIncrementalUpdate(indices []int)
	OnFullRebuild()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Incremental func(indices []int)
	Full        func()
}

func (o ObserverFuncs) OnIncrementalUpdate(indices []int) {
	if o.Incremental != nil {
		o.Incremental(indices)
	}
}

func (o ObserverFuncs) OnFullRebuild() {
	if o.Full != nil {
		o.Full()
	}
}
