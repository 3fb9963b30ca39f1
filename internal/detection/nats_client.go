package detection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is where the detection service listens for requests.
const DefaultSubjectPrefix = "detection.rpc"

const (
	subjectCopyArtifacts     = "artifacts.copy"
	subjectCopyAssessments   = "assessments.copy"
	subjectRefreshAssessment = "assessments.refresh"
)

// Requester is the subset of *nats.Conn used by the client.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// NATSClient implements Port over NATS request/reply.
type NATSClient struct {
	conn    Requester
	prefix  string
	timeout time.Duration
}

type reply struct {
	CopiedCount int    `json:"copiedCount"`
	Error       string `json:"error,omitempty"`
}

func NewNATSClient(conn Requester, prefix string, timeout time.Duration) *NATSClient {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultSubjectPrefix
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NATSClient{conn: conn, prefix: strings.TrimSuffix(prefix, "."), timeout: timeout}
}

func (c *NATSClient) CopyArtifactsToNewRule(ctx context.Context, req RuleMigration) (CopyResult, error) {
	r, err := c.request(ctx, subjectCopyArtifacts, req)
	if err != nil {
		return CopyResult{}, err
	}
	return CopyResult{CopiedCount: r.CopiedCount}, nil
}

func (c *NATSClient) CopyAssessments(ctx context.Context, req RuleMigration) (CopyResult, error) {
	r, err := c.request(ctx, subjectCopyAssessments, req)
	if err != nil {
		return CopyResult{}, err
	}
	return CopyResult{CopiedCount: r.CopiedCount}, nil
}

func (c *NATSClient) RefreshAssessment(ctx context.Context, req AssessmentRefresh) error {
	_, err := c.request(ctx, subjectRefreshAssessment, req)
	return err
}

func (c *NATSClient) request(ctx context.Context, op string, payload any) (reply, error) {
	if c.conn == nil {
		return reply{}, errors.New("detection client not connected")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return reply{}, fmt.Errorf("marshal %s request: %w", op, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	subject := c.prefix + "." + op
	msg, err := c.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return reply{}, fmt.Errorf("request %s: %w", subject, err)
	}
	var out reply
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &out); err != nil {
			return reply{}, fmt.Errorf("decode %s reply: %w", subject, err)
		}
	}
	if out.Error != "" {
		return reply{}, fmt.Errorf("%s: %s", subject, out.Error)
	}
	return out, nil
}
