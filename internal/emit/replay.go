package emit

import "fmt"

// Replay walks the body in document order and calls visit for every
// top-level instruction. At a DemoRef the matching entry is passed as d;
// otherwise d is nil. References must name demos 1..len(demos) in order,
// each exactly once.
func Replay(body Body, demos []DemoEntry, visit func(ins Instruction, d *DemoEntry) error) error {
	next := 0
	for _, ins := range body.Instructions {
		ref, ok := ins.(*DemoRef)
		if !ok {
			if err := visit(ins, nil); err != nil {
				return err
			}
			continue
		}
		if next >= len(demos) {
			return &InternalError{Message: fmt.Sprintf("reference to demo %d has no demo", ref.Index)}
		}
		d := &demos[next]
		if d.Index != ref.Index {
			return &InternalError{
				Message: fmt.Sprintf("reference to demo %d where demo %d was expected", ref.Index, d.Index),
				Line:    d.Line,
			}
		}
		next++
		if err := visit(ins, d); err != nil {
			return err
		}
	}
	if next != len(demos) {
		d := demos[next]
		return &InternalError{Message: fmt.Sprintf("demo %d is never referenced", d.Index), Line: d.Line}
	}
	return nil
}
