package aurora

import (
	"errors"
	"strings"
	"testing"
)

func TestInitErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("shader compile failed")
	err := initError(StageProgram, cause)

	if !errors.Is(err, ErrRenderInitialization) {
		t.Error("InitError does not match ErrRenderInitialization")
	}
	if !errors.Is(err, cause) {
		t.Error("InitError does not unwrap to its cause")
	}
	var ie *InitError
	if !errors.As(err, &ie) || ie.Stage != StageProgram {
		t.Errorf("errors.As stage = %v, want %v", ie, StageProgram)
	}
	if !strings.Contains(err.Error(), "program") {
		t.Errorf("Error() = %q, missing stage", err.Error())
	}
}

func TestInitErrorKeepsInnerStage(t *testing.T) {
	inner := &InitError{Stage: StageProgram, Err: errors.New("link")}
	err := initError(StageContext, inner)

	var ie *InitError
	if !errors.As(err, &ie) || ie.Stage != StageProgram {
		t.Errorf("stage = %v, want %v", ie.Stage, StageProgram)
	}
}

func TestInitErrorDoesNotMatchOtherSentinels(t *testing.T) {
	err := initError(StageSurface, ErrInvalidDimensions)
	if errors.Is(err, ErrContextLost) {
		t.Error("InitError matched ErrContextLost")
	}
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Error("InitError lost ErrInvalidDimensions")
	}
}
