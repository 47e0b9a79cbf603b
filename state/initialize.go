package state

import (
	"errors"
	"runtime"
	"time"

	"github.com/google/uuid"

	"adaptive/adaptive"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	env := &LocalEnv{
		start: time.Now(),
		Jobs:  runtime.NumCPU(),
	}
	// time ordered, so reports and logs of consecutive runs sort naturally
	if id, err := uuid.NewV7(); err == nil {
		env.RunID = id
	} else {
		env.RunID = uuid.New()
	}
	return env
}

// PrepareCompiler creates stylesheet compiler and file matcher from loaded
// configuration.
func (e *LocalEnv) PrepareCompiler() (err error) {
	if e.Cfg == nil {
		return errors.New("configuration is not loaded")
	}
	if e.Compiler, err = adaptive.NewCompiler(e.Cfg.Adaptive.Options(), e.Log); err != nil {
		return err
	}
	if e.Matcher, err = adaptive.NewMatcher(e.Cfg.Processing.Pattern); err != nil {
		return err
	}
	return nil
}
