package app

import (
	"os"

	"marlin/internal/fileops"
	"marlin/internal/logger"
)

// FileOpKind distinguishes the heavy mutating operations that run off
// the interactive goroutine.
type FileOpKind int

const (
	FileOpCopy FileOpKind = iota
	FileOpMove
	FileOpDelete
)

func (k FileOpKind) verb() string {
	switch k {
	case FileOpMove:
		return "move"
	case FileOpDelete:
		return "delete"
	default:
		return "copy"
	}
}

// FileOp is a staged copy, move or delete. The interactive side stages
// it, the shell runs Execute on a background goroutine, and the outcome
// comes back through FinishFileOp.
type FileOp struct {
	Kind    FileOpKind
	Paths   []string
	Dest    string
	Missing int // clipboard entries already gone when staged
}

// Execute performs the filesystem work. It runs off the interactive
// goroutine and must not touch application state.
func (op FileOp) Execute() (done, failed int) {
	for _, src := range op.Paths {
		var err error
		switch op.Kind {
		case FileOpMove:
			err = fileops.Move(src, op.Dest)
		case FileOpDelete:
			info, statErr := os.Lstat(src)
			if statErr != nil {
				err = statErr
			} else {
				err = fileops.Delete(src, info.IsDir())
			}
		default:
			err = fileops.Copy(src, op.Dest)
		}
		if err != nil {
			failed++
			logger.Errorf("app: %s %s: %v", op.Kind.verb(), src, err)
		} else {
			done++
		}
	}
	return done, failed
}

// TakePendingOp hands the staged operation to the shell, at most once.
func (a *App) TakePendingOp() *FileOp {
	op := a.pendingOp
	a.pendingOp = nil
	return op
}

// FinishFileOp reconciles a completed background operation back into
// state: status message, clipboard retention and a fresh listing.
func (a *App) FinishFileOp(op FileOp, done, failed int) {
	if op.Kind == FileOpDelete {
		if failed > 0 {
			a.setError("deleted %d item(s), %d failed", done, failed)
		} else {
			a.setInfo("deleted %d item(s)", done)
		}
		a.requestLoad()
		return
	}

	// Cut clears once the sources have moved; copy stays pasteable.
	if op.Kind == FileOpMove {
		a.Clip.Clear()
	}
	switch {
	case failed > 0:
		a.setError("pasted %d item(s), %d failed", done, failed)
	case op.Missing > 0:
		a.setInfo("pasted %d item(s), %d missing skipped", done, op.Missing)
	default:
		a.setInfo("pasted %d item(s)", done)
	}
	a.Reload()
}
