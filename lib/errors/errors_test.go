package errors

import (
	"errors"
	"fmt"
	"testing"
)

// TestSentinelErrors verifies all sentinel errors are properly defined.
func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrPoolClosed", ErrPoolClosed},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrNotOwned", ErrNotOwned},
		{"ErrLinkDead", ErrLinkDead},
		{"ErrConnection", ErrConnection},
		{"ErrStatementClosed", ErrStatementClosed},
		{"ErrTxDone", ErrTxDone},
		{"ErrResultClosed", ErrResultClosed},
		{"ErrTimeout", ErrTimeout},
		{"ErrInvalidState", ErrInvalidState},
		{"ErrInternal", ErrInternal},
	}

	for _, tc := range sentinels {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err == nil {
				t.Errorf("%s should not be nil", tc.name)
			}
			if tc.err.Error() == "" {
				t.Errorf("%s should have a non-empty message", tc.name)
			}
		})
	}
}

// TestConfigurationErrors verifies configuration errors wrap ErrConfiguration.
func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrMaxConnections", ErrMaxConnections},
		{"ErrIdleTimeout", ErrIdleTimeout},
		{"ErrNoConnector", ErrNoConnector},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, ErrConfiguration) {
				t.Errorf("%s should wrap ErrConfiguration", tc.name)
			}
			if !IsConfiguration(tc.err) {
				t.Errorf("IsConfiguration(%s) should be true", tc.name)
			}
		})
	}
}

func TestErrorInterface(t *testing.T) {
	e := New(CodeClosed, "pool is closed")
	if e.Error() != "pool is closed" {
		t.Errorf("Error() = %q, want %q", e.Error(), "pool is closed")
	}
	if e.SafeMessage() != "pool is closed" {
		t.Errorf("SafeMessage() = %q, want %q", e.SafeMessage(), "pool is closed")
	}
	if e.Code != CodeClosed {
		t.Errorf("Code = %d, want %d", e.Code, CodeClosed)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	e := Wrap(CodeConnect, "connect failed", cause)

	if !errors.Is(e, cause) {
		t.Error("wrapped error should match its cause with errors.Is")
	}
	if e.SafeMessage() != "connect failed" {
		t.Errorf("SafeMessage() = %q, should not contain cause", e.SafeMessage())
	}
	want := "connect failed: dial tcp: connection refused"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestWrapConnect(t *testing.T) {
	cause := errors.New("bad handshake")
	e := WrapConnect(cause)

	if e.Code != CodeConnect {
		t.Errorf("Code = %d, want %d", e.Code, CodeConnect)
	}
	if !errors.Is(e, cause) {
		t.Error("WrapConnect should preserve the connector's error")
	}
}

func TestFromSentinel(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{ErrPoolClosed, CodeClosed},
		{ErrConfiguration, CodeConfiguration},
		{ErrMaxConnections, CodeConfiguration},
		{ErrNotOwned, CodeOwnership},
		{ErrConnection, CodeConnect},
		{ErrTimeout, CodeTimeout},
		{ErrTxDone, CodeState},
		{ErrStatementClosed, CodeState},
		{ErrResultClosed, CodeState},
		{ErrInternal, CodeInternal},
	}

	for _, tc := range tests {
		e := FromSentinel(tc.err)
		if e.Code != tc.code {
			t.Errorf("FromSentinel(%v).Code = %d, want %d", tc.err, e.Code, tc.code)
		}
		if !errors.Is(e, tc.err) {
			t.Errorf("FromSentinel(%v) should match the sentinel with errors.Is", tc.err)
		}
	}

	if FromSentinel(nil) != nil {
		t.Error("FromSentinel(nil) should be nil")
	}
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("acquire: %w", ErrPoolClosed)
	if !IsPoolClosed(wrapped) {
		t.Error("IsPoolClosed should see through wrapping")
	}
	if IsPoolClosed(ErrTimeout) {
		t.Error("IsPoolClosed should be false for ErrTimeout")
	}
	if !IsTxDone(fmt.Errorf("commit: %w", ErrTxDone)) {
		t.Error("IsTxDone should see through wrapping")
	}
	if !IsNotOwned(FromSentinel(ErrNotOwned)) {
		t.Error("IsNotOwned should match structured errors")
	}
	if !IsConnection(WrapConnect(errors.New("boom"))) {
		t.Error("IsConnection should match WrapConnect errors")
	}
}

func TestJoin(t *testing.T) {
	if Join(nil, nil) != nil {
		t.Error("Join of nils should be nil")
	}
	joined := Join(ErrPoolClosed, ErrLinkDead)
	if !Is(joined, ErrPoolClosed) || !Is(joined, ErrLinkDead) {
		t.Error("joined error should match both members")
	}
}

func TestAs(t *testing.T) {
	var target *Error
	err := fmt.Errorf("outer: %w", Wrap(CodeState, "bad state", ErrInvalidState))
	if !As(err, &target) {
		t.Fatal("As should find the structured error")
	}
	if target.Code != CodeState {
		t.Errorf("Code = %d, want %d", target.Code, CodeState)
	}
}
