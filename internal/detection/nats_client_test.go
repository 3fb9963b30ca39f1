package detection

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRequester struct {
	subject string
	data    []byte
	reply   []byte
	err     error
}

func (s *stubRequester) RequestWithContext(_ context.Context, subj string, data []byte) (*nats.Msg, error) {
	s.subject = subj
	s.data = data
	if s.err != nil {
		return nil, s.err
	}
	return &nats.Msg{Subject: subj, Data: s.reply}, nil
}

func TestCopyArtifactsRequest(t *testing.T) {
	conn := &stubRequester{reply: []byte(`{"copiedCount":3}`)}
	client := NewNATSClient(conn, "", 0)

	migration := RuleMigration{OldRuleID: uuid.New(), NewRuleID: uuid.New(), OrganizationID: uuid.New(), UserID: uuid.New()}
	res, err := client.CopyArtifactsToNewRule(context.Background(), migration)
	require.NoError(t, err)
	assert.Equal(t, 3, res.CopiedCount)
	assert.Equal(t, "detection.rpc.artifacts.copy", conn.subject)

	var sent RuleMigration
	require.NoError(t, json.Unmarshal(conn.data, &sent))
	assert.Equal(t, migration, sent)
}

func TestRefreshAssessmentRemoteError(t *testing.T) {
	conn := &stubRequester{reply: []byte(`{"error":"no program for language"}`)}
	client := NewNATSClient(conn, "linter.", 0)

	err := client.RefreshAssessment(context.Background(), AssessmentRefresh{RuleID: uuid.New(), Language: "go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no program for language")
	assert.Equal(t, "linter.assessments.refresh", conn.subject)
}

func TestCopyAssessmentsTransportError(t *testing.T) {
	conn := &stubRequester{err: nats.ErrNoResponders}
	client := NewNATSClient(conn, "", 0)

	_, err := client.CopyAssessments(context.Background(), RuleMigration{})
	assert.True(t, errors.Is(err, nats.ErrNoResponders))
}

func TestClientWithoutConnection(t *testing.T) {
	_, err := NewNATSClient(nil, "", 0).CopyAssessments(context.Background(), RuleMigration{})
	assert.Error(t, err)
}
