package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := New(CodeMatchNotFound, "match 42 missing")
	if !stderrors.Is(err, New(CodeMatchNotFound, "different message")) {
		t.Fatal("expected code match")
	}
	if stderrors.Is(err, New(CodeStorage, "match 42 missing")) {
		t.Fatal("expected code mismatch")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	err := Wrap(CodeStorage, "persist vote", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	wrapped := fmt.Errorf("dispatch: %w", err)
	if GetCode(wrapped) != CodeStorage {
		t.Fatalf("code = %v, want %v", GetCode(wrapped), CodeStorage)
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want codes.Code
	}{
		{CodeUsage, codes.InvalidArgument},
		{CodeDurationParse, codes.InvalidArgument},
		{CodeMalformedKey, codes.InvalidArgument},
		{CodeUserResolution, codes.InvalidArgument},
		{CodeInvalidTarget, codes.InvalidArgument},
		{CodeUnauthorized, codes.PermissionDenied},
		{CodeRegistrationClosed, codes.FailedPrecondition},
		{CodeMatchNotFound, codes.NotFound},
		{CodeCompetitorNotFound, codes.NotFound},
		{CodeStorage, codes.Unavailable},
		{CodeDataCorruption, codes.DataLoss},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range cases {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("%s maps to %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestHandleErrorConvertsDomainError(t *testing.T) {
	t.Parallel()

	err := HandleError(WithMetadata(CodeRegistrationClosed, "match no longer accepts competitors", map[string]string{"match": "1z"}))
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("status code = %v, want %v", st.Code(), codes.FailedPrecondition)
	}
}

func TestHandleErrorHidesUnknownErrors(t *testing.T) {
	t.Parallel()

	err := HandleError(stderrors.New("sensitive internals"))
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.Internal {
		t.Fatalf("status code = %v, want %v", st.Code(), codes.Internal)
	}
	if st.Message() == "sensitive internals" {
		t.Fatal("internal details leaked to status message")
	}
}

func TestUserCorrectable(t *testing.T) {
	t.Parallel()

	if !CodeRegistrationClosed.UserCorrectable() {
		t.Fatal("registration closed should be user correctable")
	}
	if CodeStorage.UserCorrectable() {
		t.Fatal("storage failures are not user correctable")
	}
}
