package review

import "context"

// Key bindings for the interactive review loop. Bindings are bounded by
// state: a key only acts in the states listed here and is ignored elsewhere.
//
//	space / enter  flip (question side only)
//	h              toggle hint (question side only)
//	1 2 3 4        rate Again / Hard / Good / Easy (answer side only)
//	r              restart (completed only)
const (
	keySpace   = ' '
	keyEnter   = '\r'
	keyNewline = '\n'
	keyHint    = 'h'
	keyRestart = 'r'
)

// HandleKey applies one keypress to the session. It reports whether the key
// was consumed; unbound keys and keys pressed in the wrong state are
// ignored without error.
func (s *Session) HandleKey(ctx context.Context, key byte) (bool, error) {
	switch {
	case key == keySpace || key == keyEnter || key == keyNewline:
		if s.state != StateFront {
			return false, nil
		}
		s.Flip()
		return true, nil

	case key == keyHint:
		return s.ToggleHint(), nil

	case key >= '1' && key <= '4':
		if s.state != StateBack {
			return false, nil
		}
		bucket := Bucket(key - '1')
		if err := s.Rate(ctx, bucket); err != nil {
			return true, err
		}
		return true, nil

	case key == keyRestart:
		if s.state != StateCompleted {
			return false, nil
		}
		return true, s.Restart(ctx)
	}

	return false, nil
}
