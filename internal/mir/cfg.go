package mir

// Successors returns the blocks a terminator can transfer control to, in a
// stable order (fallthrough/primary target first where the terminator
// distinguishes one).
func Successors(body *Body, id BlockID) []BlockID {
	term := body.Blocks[id].Terminator
	if term == nil {
		return nil
	}
	switch term.Kind {
	case TermGoto:
		return []BlockID{term.Target}
	case TermSwitchInt:
		out := make([]BlockID, 0, len(term.Cases)+1)
		for _, c := range term.Cases {
			out = append(out, c.Target)
		}
		return append(out, term.Otherwise)
	case TermCall:
		return []BlockID{term.CallTarget}
	case TermAssert:
		return []BlockID{term.AssertTarget}
	case TermReturn, TermTailCall, TermUnreachable:
		return nil
	default:
		return nil
	}
}

// Predecessors returns, for every block, the set of blocks whose
// terminator can transfer control to it — the reverse of Successors over
// the whole Body, computed once and cached by the caller as needed.
func Predecessors(body *Body) map[BlockID][]BlockID {
	preds := make(map[BlockID][]BlockID, len(body.Blocks))
	for i := range body.Blocks {
		id := BlockID(i)
		for _, succ := range Successors(body, id) {
			preds[succ] = append(preds[succ], id)
		}
	}
	return preds
}
