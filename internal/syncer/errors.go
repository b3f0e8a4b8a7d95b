package syncer

import "fmt"

// Etapy cyklu, na których może polecieć błąd
const (
	StageFeed  = "feed"
	StageStore = "store"
	StageCache = "db"
	StageSend  = "send"
)

// StageError mówi, na którym etapie cykl się wywrócił
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }
