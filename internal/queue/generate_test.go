package queue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
)

type fakeGenerator struct {
	fileIDs []string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, fileID string) error {
	f.fileIDs = append(f.fileIDs, fileID)
	return f.err
}

type statusUpdate struct {
	fileID string
	status string
	errMsg string
}

type fakeStatuses struct {
	updates []statusUpdate
	err     error
}

func (f *fakeStatuses) SetGraphStatus(_ context.Context, fileID string, status string, errMsg string) error {
	f.updates = append(f.updates, statusUpdate{fileID, status, errMsg})
	return f.err
}

func (f *fakeStatuses) GraphStatus(_ context.Context, fileID string) (*common.GraphGenerationStatus, error) {
	return nil, errors.New("not implemented")
}

func TestProcessGenerateMessageTracksSuccess(t *testing.T) {
	generator := &fakeGenerator{}
	statuses := &fakeStatuses{}

	err := ProcessGenerateMessage(context.Background(), generator, statuses, []byte(`{"file_id": "file-1"}`))
	if err != nil {
		t.Fatalf("ProcessGenerateMessage() error = %v", err)
	}
	if len(generator.fileIDs) != 1 || generator.fileIDs[0] != "file-1" {
		t.Fatalf("generator called with %v, want [file-1]", generator.fileIDs)
	}

	want := []statusUpdate{
		{"file-1", common.GraphStatusProcessing, ""},
		{"file-1", common.GraphStatusCompleted, ""},
	}
	if len(statuses.updates) != len(want) {
		t.Fatalf("got %d status updates %v, want %d", len(statuses.updates), statuses.updates, len(want))
	}
	for i, update := range statuses.updates {
		if update != want[i] {
			t.Errorf("update %d = %+v, want %+v", i, update, want[i])
		}
	}
}

func TestProcessGenerateMessageTracksFailure(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("extraction blew up")}
	statuses := &fakeStatuses{}

	err := ProcessGenerateMessage(context.Background(), generator, statuses, []byte(`{"file_id": "file-2"}`))
	if err == nil {
		t.Fatal("ProcessGenerateMessage() expected error")
	}

	if len(statuses.updates) != 2 {
		t.Fatalf("got %d status updates %v, want 2", len(statuses.updates), statuses.updates)
	}
	if statuses.updates[0].status != common.GraphStatusProcessing {
		t.Errorf("first status = %q, want %q", statuses.updates[0].status, common.GraphStatusProcessing)
	}
	last := statuses.updates[1]
	if last.status != common.GraphStatusFailed {
		t.Errorf("last status = %q, want %q", last.status, common.GraphStatusFailed)
	}
	if !strings.Contains(last.errMsg, "extraction blew up") {
		t.Errorf("failure message = %q, want the generator error", last.errMsg)
	}
}

func TestProcessGenerateMessageRejectsBadMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", "not json"},
		{"missing file id", `{"file_id": "  "}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			generator := &fakeGenerator{}
			statuses := &fakeStatuses{}

			err := ProcessGenerateMessage(context.Background(), generator, statuses, []byte(tc.body))
			if err == nil {
				t.Fatal("ProcessGenerateMessage() expected error")
			}
			if len(generator.fileIDs) != 0 {
				t.Errorf("generator called with %v, want no calls", generator.fileIDs)
			}
			if len(statuses.updates) != 0 {
				t.Errorf("status updates = %v, want none", statuses.updates)
			}
		})
	}
}

func TestProcessGenerateMessageIgnoresStatusWriteErrors(t *testing.T) {
	generator := &fakeGenerator{}
	statuses := &fakeStatuses{err: errors.New("db down")}

	if err := ProcessGenerateMessage(context.Background(), generator, statuses, []byte(`{"file_id": "file-3"}`)); err != nil {
		t.Fatalf("ProcessGenerateMessage() error = %v, want nil despite status failures", err)
	}
}
